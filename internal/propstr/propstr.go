// Package propstr implements the flat comma separated key=value encoding
// used to store structured guest configuration in a single text field.
package propstr

import (
	"sort"
	"strings"
)

const formatGeneric = "property-string"

// Parse splits raw into its key=value pairs. A segment without '=' is bound
// to defaultKey when one is given. An empty raw string yields an empty map.
// On failure no partial result is returned.
func Parse(raw, defaultKey string) (map[string]string, error) {
	res := map[string]string{}
	if raw == "" {
		return res, nil
	}

	for _, segment := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(segment, "=")
		if ok {
			if _, exists := res[k]; exists {
				return nil, Errorf(formatGeneric, ErrDuplicateKey, segment)
			}
			res[k] = v
			continue
		}
		if defaultKey == "" {
			return nil, Errorf(formatGeneric, ErrMalformedSegment, segment)
		}
		if _, exists := res[defaultKey]; exists {
			return nil, Errorf(formatGeneric, ErrDuplicateDefaultKey, segment)
		}
		res[defaultKey] = segment
	}
	return res, nil
}

// Print is the inverse of Parse. Keys are emitted in sorted order with the
// default key value, if any, leading without its key. Empty values are
// dropped.
func Print(data map[string]string, defaultKey string) string {
	keys := make([]string, 0, len(data))
	for k, v := range data {
		if k == defaultKey || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+data[k])
	}
	if defaultKey != "" {
		if v := data[defaultKey]; v != "" {
			parts = append([]string{v}, parts...)
		}
	}
	return strings.Join(parts, ",")
}

// ParseBoolean reports whether value is one of the truthy tokens 1, on, yes
// or true, ignoring case. If value is nil, fallback is returned.
func ParseBoolean(value *string, fallback *bool) *bool {
	if value == nil {
		return fallback
	}
	b := IsTrue(*value)
	return &b
}

// IsTrue is ParseBoolean for a value that is known to be present.
func IsTrue(value string) bool {
	switch strings.ToLower(value) {
	case "1", "on", "yes", "true":
		return true
	}
	return false
}
