package parser

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/idna"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// ACMEConfig is a node's ACME account configuration.
type ACMEConfig struct {
	Account string            `json:"account,omitempty" yaml:"account,omitempty"`
	Domains []string          `json:"domains,omitempty" yaml:"domains,omitempty"`
	Extra   map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// ParseACME parses a value such as "account=default,domains=a.example;b.example".
// Every segment must be a key=value pair. An empty value yields an empty
// config.
func (p Parser) ParseACME(value string) (ACMEConfig, error) {
	var res ACMEConfig
	if value == "" {
		return res, nil
	}

	props, err := propstr.Parse(value, "")
	if err != nil {
		p.Log.LogParseFailure(FormatACME, value, err)
		return ACMEConfig{}, err
	}

	for k, v := range props {
		switch k {
		case "account":
			res.Account = v
		case "domains":
			res.Domains = strings.Split(v, ";")
		default:
			if res.Extra == nil {
				res.Extra = make(map[string]string)
			}
			res.Extra[k] = v
		}
	}
	return res, nil
}

// PrintACME renders cfg with keys sorted and the domains joined by ';'.
func (p Parser) PrintACME(cfg ACMEConfig) string {
	data := make(map[string]string, len(cfg.Extra)+2)
	for k, v := range cfg.Extra {
		data[k] = v
	}
	data["account"] = cfg.Account
	data["domains"] = strings.Join(cfg.Domains, ";")
	return propstr.Print(data, "")
}

// ASCIIDomains returns the domains of cfg in their ASCII (punycode) form as
// an ACME server expects them.
func (cfg ACMEConfig) ASCIIDomains() ([]string, error) {
	res := make([]string, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		a, err := idna.Lookup.ToASCII(d)
		if err != nil {
			return nil, fmt.Errorf("invalid domain %q: %w", d, err)
		}
		res = append(res, a)
	}
	return res, nil
}

// ParseACMEPluginData splits DNS plugin data into its key=value lines. The
// value is everything after the first '='. Lines without a value are
// returned in order as extra data.
func (p Parser) ParseACMEPluginData(data string) (map[string]string, []string) {
	res := make(map[string]string)
	var extra []string
	for _, line := range strings.Split(data, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if ok && v != "" {
			res[k] = v
			continue
		}
		extra = append(extra, line)
	}
	return res, extra
}

// PrintACMEPluginData is the inverse of ParseACMEPluginData. Keys are
// written sorted, followed by the extra lines.
func (p Parser) PrintACMEPluginData(data map[string]string, extra []string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+len(extra))
	for _, k := range keys {
		lines = append(lines, k+"="+data[k])
	}
	lines = append(lines, extra...)
	return strings.Join(lines, "\n")
}

// ParseTfaConfig splits a two-factor configuration string into its pairs
// without validation. A segment without '=' maps to an empty value.
func (p Parser) ParseTfaConfig(value string) map[string]string {
	res := make(map[string]string)
	if value == "" {
		return res
	}
	for _, seg := range strings.Split(value, ",") {
		k, v, _ := strings.Cut(seg, "=")
		res[k] = v
	}
	return res
}

// LegacyTfaType is returned by ParseTfaType for a stored value that does not
// name its factor type.
const LegacyTfaType = "1"

// ParseTfaType maps a stored two-factor value to its factor type: "x!oath"
// is totp, "x!<name>" is <name>, and any other non-empty value is the
// legacy type. It reports false for an empty value.
func (p Parser) ParseTfaType(value string) (string, bool) {
	switch {
	case value == "":
		return "", false
	case value == "x!oath":
		return "totp", true
	case strings.HasPrefix(value, "x!") && len(value) > 2:
		return value[2:], true
	}
	return LegacyTfaType, true
}
