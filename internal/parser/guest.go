package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// IPConfig is the cloud-init address configuration of one interface.
type IPConfig struct {
	IP       string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Gateway  string `json:"gw,omitempty" yaml:"gw,omitempty"`
	IP6      string `json:"ip6,omitempty" yaml:"ip6,omitempty"`
	Gateway6 string `json:"gw6,omitempty" yaml:"gw6,omitempty"`
}

var (
	ipConfigToken = regexp.MustCompile(`^(ip|gw|ip6|gw6)=(\S+)$`)
	startupOrder  = regexp.MustCompile(`^(order)?=(\d+)$`)
	startupDelay  = regexp.MustCompile(`^(up|down)=(\d+)$`)
)

// ParseIPConfig parses a value such as "ip=10.0.0.2/24,gw=10.0.0.1". Only
// the ip, gw, ip6 and gw6 keys are allowed.
func (p Parser) ParseIPConfig(value string) (IPConfig, error) {
	if value == "" {
		return IPConfig{}, p.fail(FormatIPConfig, value, propstr.ErrMissingField, "", true)
	}

	var res IPConfig
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		m := ipConfigToken.FindStringSubmatch(seg)
		if m == nil {
			return IPConfig{}, p.fail(FormatIPConfig, value, propstr.ErrUnrecognizedToken, seg, true)
		}
		switch m[1] {
		case "ip":
			res.IP = m[2]
		case "gw":
			res.Gateway = m[2]
		case "ip6":
			res.IP6 = m[2]
		case "gw6":
			res.Gateway6 = m[2]
		}
	}
	return res, nil
}

// PrintIPConfig renders cfg.
func (p Parser) PrintIPConfig(cfg IPConfig) string {
	var parts []string
	for _, kv := range [][2]string{
		{"ip", cfg.IP},
		{"gw", cfg.Gateway},
		{"ip6", cfg.IP6},
		{"gw6", cfg.Gateway6},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, ",")
}

// Startup is the guest boot ordering. Each field is independently optional.
type Startup struct {
	Order *int `json:"order,omitempty" yaml:"order,omitempty"`
	Up    *int `json:"up,omitempty" yaml:"up,omitempty"`
	Down  *int `json:"down,omitempty" yaml:"down,omitempty"`
}

// ParseStartup parses a value such as "order=1,up=30". The order key may be
// omitted ("=1"). An empty value yields an empty Startup.
func (p Parser) ParseStartup(value string) (Startup, error) {
	var res Startup
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		var (
			dst **int
			num string
		)
		if m := startupOrder.FindStringSubmatch(seg); m != nil {
			dst, num = &res.Order, m[2]
		} else if m := startupDelay.FindStringSubmatch(seg); m != nil {
			if m[1] == "up" {
				dst = &res.Up
			} else {
				dst = &res.Down
			}
			num = m[2]
		} else {
			return Startup{}, p.fail(FormatStartup, value, propstr.ErrUnrecognizedToken, seg, true)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return Startup{}, p.fail(FormatStartup, value, err, seg, true)
		}
		*dst = &n
	}
	return res, nil
}

// PrintStartup renders s.
func (p Parser) PrintStartup(s Startup) string {
	var parts []string
	if s.Order != nil {
		parts = append(parts, "order="+strconv.Itoa(*s.Order))
	}
	if s.Up != nil {
		parts = append(parts, "up="+strconv.Itoa(*s.Up))
	}
	if s.Down != nil {
		parts = append(parts, "down="+strconv.Itoa(*s.Down))
	}
	return strings.Join(parts, ",")
}

// CPU is a virtual machine CPU model with its flags and options.
type CPU struct {
	Type    string             `json:"cputype,omitempty" yaml:"cputype,omitempty"`
	Options propstr.Properties `json:"options,omitempty" yaml:"options,omitempty"`
}

// DefaultCPUType is written when options are set without a model.
const DefaultCPUType = "kvm64"

// ParseQemuCPU parses a value such as "host,flags=+aes". An empty value
// yields an empty CPU; otherwise the model is required.
func (p Parser) ParseQemuCPU(value string) (CPU, error) {
	var res CPU
	if value == "" {
		return res, nil
	}

	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		if !strings.Contains(seg, "=") {
			if res.Type != "" {
				return CPU{}, p.fail(FormatCPU, value, propstr.ErrDuplicateDefaultKey, seg, false)
			}
			res.Type = seg
			continue
		}
		m := driveOption.FindStringSubmatch(seg)
		if m == nil {
			return CPU{}, p.fail(FormatCPU, value, propstr.ErrUnrecognizedToken, seg, false)
		}
		if res.Options.Has(m[1]) {
			return CPU{}, p.fail(FormatCPU, value, propstr.ErrDuplicateKey, seg, false)
		}
		res.Options.Set(m[1], m[2])
	}

	if res.Type == "" {
		return CPU{}, p.fail(FormatCPU, value, propstr.ErrMissingField, "cputype", false)
	}
	return res, nil
}

// PrintQemuCPU renders cpu. Options without a model are written against
// DefaultCPUType; an entirely empty CPU renders as "".
func (p Parser) PrintQemuCPU(cpu CPU) string {
	opts := cpu.Options.String()
	if cpu.Type == "" {
		if opts == "" {
			return ""
		}
		return DefaultCPUType + opts
	}
	return cpu.Type + opts
}
