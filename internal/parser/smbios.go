package parser

import (
	"encoding/base64"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// Smbios1 is the SMBIOS type 1 (system information) identity of a virtual
// machine. All fields but UUID may hold arbitrary text.
type Smbios1 struct {
	UUID         string             `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Manufacturer string             `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Product      string             `json:"product,omitempty" yaml:"product,omitempty"`
	Version      string             `json:"version,omitempty" yaml:"version,omitempty"`
	Serial       string             `json:"serial,omitempty" yaml:"serial,omitempty"`
	SKU          string             `json:"sku,omitempty" yaml:"sku,omitempty"`
	Family       string             `json:"family,omitempty" yaml:"family,omitempty"`
	Extra        propstr.Properties `json:"extra,omitempty" yaml:"extra,omitempty"`
}

const smbiosBase64Key = "base64"

func (s *Smbios1) fields() []struct {
	key string
	val *string
} {
	return []struct {
		key string
		val *string
	}{
		{"uuid", &s.UUID},
		{"manufacturer", &s.Manufacturer},
		{"product", &s.Product},
		{"version", &s.Version},
		{"serial", &s.Serial},
		{"sku", &s.SKU},
		{"family", &s.Family},
	}
}

// ParseQemuSmbios1 parses a value such as
// "uuid=...,manufacturer=UHJveG1veA==,base64=1". When the base64 marker is
// true every value except uuid is decoded.
func (p Parser) ParseQemuSmbios1(value string) (Smbios1, error) {
	var raw propstr.Properties
	for _, seg := range strings.Split(value, ",") {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		raw.Set(k, v)
	}

	encoded := false
	if v, ok := raw.Get(smbiosBase64Key); ok {
		encoded = propstr.IsTrue(v)
		raw.Delete(smbiosBase64Key)
	}

	var res Smbios1
	known := make(map[string]*string)
	for _, f := range res.fields() {
		known[f.key] = f.val
	}

	for _, prop := range raw {
		v := prop.Value
		if encoded && prop.Key != "uuid" {
			b, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return Smbios1{}, p.fail(FormatSmbios, value, err, prop.Key+"="+prop.Value, false)
			}
			v = string(b)
		}
		if dst, ok := known[prop.Key]; ok {
			*dst = v
			continue
		}
		res.Extra.Set(prop.Key, v)
	}
	return res, nil
}

// PrintQemuSmbios1 renders s. Every non-empty value except uuid is base64
// encoded, and the base64 marker is appended when any value was.
func (p Parser) PrintQemuSmbios1(s Smbios1) string {
	var (
		parts   []string
		encoded bool
	)
	add := func(k, v string) {
		if v == "" {
			return
		}
		if k != "uuid" {
			encoded = true
			v = base64.StdEncoding.EncodeToString([]byte(v))
		}
		parts = append(parts, k+"="+v)
	}
	for _, f := range s.fields() {
		add(f.key, *f.val)
	}
	for _, prop := range s.Extra {
		add(prop.Key, prop.Value)
	}
	if encoded {
		parts = append(parts, smbiosBase64Key+"=1")
	}
	return strings.Join(parts, ",")
}
