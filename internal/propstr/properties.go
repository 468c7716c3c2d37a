package propstr

import "strings"

// Property is a single key=value option.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Properties is an ordered option list. Order is the order in which options
// were parsed or set, and is the order they are printed in.
type Properties []Property

// Get returns the value stored for key.
func (p Properties) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set replaces the value for key in place, or appends it.
func (p *Properties) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

// Delete removes key if present.
func (p *Properties) Delete(key string) {
	for i := range *p {
		if (*p)[i].Key == key {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
}

// String renders the options as ",k=v" pairs in order, skipping empty
// values. The result is suitable for appending to a positional value.
func (p Properties) String() string {
	var b strings.Builder
	for _, prop := range p {
		if prop.Value == "" {
			continue
		}
		b.WriteByte(',')
		b.WriteString(prop.Key)
		b.WriteByte('=')
		b.WriteString(prop.Value)
	}
	return b.String()
}

// IsBlank reports whether segment is empty or whitespace only. The domain
// grammars skip such segments.
func IsBlank(segment string) bool {
	return strings.TrimSpace(segment) == ""
}
