package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// QemuNetwork is a virtual machine network device (net0, net1, ...).
type QemuNetwork struct {
	Model    string   `json:"model" yaml:"model"`
	MACAddr  string   `json:"macaddr,omitempty" yaml:"macaddr,omitempty"`
	Bridge   string   `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	Tag      string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	Firewall *bool    `json:"firewall,omitempty" yaml:"firewall,omitempty"`
	Rate     string   `json:"rate,omitempty" yaml:"rate,omitempty"`
	Queues   *int     `json:"queues,omitempty" yaml:"queues,omitempty"`
	LinkDown *bool    `json:"link_down,omitempty" yaml:"link_down,omitempty"`
	Trunks   []string `json:"trunks,omitempty" yaml:"trunks,omitempty"`
	MTU      *int     `json:"mtu,omitempty" yaml:"mtu,omitempty"`
}

var (
	qemuModel  = regexp.MustCompile(`(?i)^(ne2k_pci|e1000|e1000-82540em|e1000-82544gc|e1000-82545em|vmxnet3|rtl8139|pcnet|virtio|ne2k_isa|i82551|i82557b|i82559er)(=([0-9a-f]{2}(:[0-9a-f]{2}){5}))?$`)
	decimal    = regexp.MustCompile(`^\d+(\.\d+)?$`)
	digits     = regexp.MustCompile(`^\d+$`)
	trunkList  = regexp.MustCompile(`^\d+(?:-\d+)?(?:;\d+(?:-\d+)?)*$`)
	nonSpace   = regexp.MustCompile(`^\S+$`)
	lxcNetKey  = regexp.MustCompile(`^(bridge|hwaddr|mtu|name|ip|ip6|gw|gw6|tag|rate)=(\S+)$`)
	lxcNetFlag = regexp.MustCompile(`^(firewall|link_down)=(\d+)$`)
	lxcNetType = regexp.MustCompile(`^type=\S+$`)
)

// ParseQemuNetwork parses a virtual machine network device string such as
// "virtio=BC:24:11:2A:3B:4C,bridge=vmbr0,firewall=1". Any token outside the
// grammar fails the whole parse, as does a missing model.
func (p Parser) ParseQemuNetwork(value string) (QemuNetwork, error) {
	if value == "" {
		return QemuNetwork{}, p.fail(FormatQemuNet, value, propstr.ErrMissingField, "", false)
	}

	var res QemuNetwork
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}

		if m := qemuModel.FindStringSubmatch(seg); m != nil {
			res.Model = strings.ToLower(m[1])
			res.MACAddr = m[3]
			continue
		}

		if !applyQemuNetOption(&res, seg) {
			return QemuNetwork{}, p.fail(FormatQemuNet, value, propstr.ErrUnrecognizedToken, seg, false)
		}
	}

	if res.Model == "" {
		return QemuNetwork{}, p.fail(FormatQemuNet, value, propstr.ErrMissingField, "model", false)
	}
	return res, nil
}

func applyQemuNetOption(res *QemuNetwork, seg string) bool {
	k, v, ok := strings.Cut(seg, "=")
	if !ok {
		return false
	}
	switch k {
	case "bridge":
		if !nonSpace.MatchString(v) {
			return false
		}
		res.Bridge = v
	case "rate":
		if !decimal.MatchString(v) {
			return false
		}
		res.Rate = v
	case "tag":
		if !decimal.MatchString(v) {
			return false
		}
		res.Tag = v
	case "firewall":
		return setFlag(&res.Firewall, v)
	case "link_down":
		return setFlag(&res.LinkDown, v)
	case "queues":
		return setInt(&res.Queues, v)
	case "trunks":
		if !trunkList.MatchString(v) {
			return false
		}
		res.Trunks = strings.Split(v, ";")
	case "mtu":
		return setInt(&res.MTU, v)
	default:
		return false
	}
	return true
}

func setInt(dst **int, v string) bool {
	if !digits.MatchString(v) {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	*dst = &n
	return true
}

// setFlag accepts any run of digits; every nonzero value is set.
func setFlag(dst **bool, v string) bool {
	if !digits.MatchString(v) {
		return false
	}
	b := strings.TrimLeft(v, "0") != ""
	*dst = &b
	return true
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// PrintQemuNetwork renders net. Tag and firewall are only meaningful on a
// bridged device and are omitted otherwise.
func (p Parser) PrintQemuNetwork(net QemuNetwork) string {
	var b strings.Builder
	b.WriteString(net.Model)
	if net.MACAddr != "" {
		b.WriteString("=" + net.MACAddr)
	}
	if net.Bridge != "" {
		b.WriteString(",bridge=" + net.Bridge)
		if net.Tag != "" {
			b.WriteString(",tag=" + net.Tag)
		}
		if net.Firewall != nil {
			b.WriteString(",firewall=" + flag(*net.Firewall))
		}
	}
	if net.Rate != "" {
		b.WriteString(",rate=" + net.Rate)
	}
	if net.Queues != nil {
		b.WriteString(",queues=" + strconv.Itoa(*net.Queues))
	}
	if net.LinkDown != nil {
		b.WriteString(",link_down=" + flag(*net.LinkDown))
	}
	if len(net.Trunks) != 0 {
		b.WriteString(",trunks=" + strings.Join(net.Trunks, ";"))
	}
	if net.MTU != nil {
		b.WriteString(",mtu=" + strconv.Itoa(*net.MTU))
	}
	return b.String()
}

// LxcNetwork is a container network interface. Values are kept as written.
type LxcNetwork struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Bridge   string `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	HWAddr   string `json:"hwaddr,omitempty" yaml:"hwaddr,omitempty"`
	IP       string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Gateway  string `json:"gw,omitempty" yaml:"gw,omitempty"`
	IP6      string `json:"ip6,omitempty" yaml:"ip6,omitempty"`
	Gateway6 string `json:"gw6,omitempty" yaml:"gw6,omitempty"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Rate     string `json:"rate,omitempty" yaml:"rate,omitempty"`
	MTU      string `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Firewall *bool  `json:"firewall,omitempty" yaml:"firewall,omitempty"`
	LinkDown *bool  `json:"link_down,omitempty" yaml:"link_down,omitempty"`
}

// ParseLxcNetwork parses a container network string. Unknown tokens are
// logged and skipped; the interface type token is accepted silently. Only
// an empty value is an error.
func (p Parser) ParseLxcNetwork(value string) (LxcNetwork, error) {
	if value == "" {
		return LxcNetwork{}, p.fail(FormatLxcNet, value, propstr.ErrMissingField, "", false)
	}

	var res LxcNetwork
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		if m := lxcNetKey.FindStringSubmatch(seg); m != nil {
			*res.field(m[1]) = m[2]
			continue
		}
		if m := lxcNetFlag.FindStringSubmatch(seg); m != nil {
			b := propstr.IsTrue(m[2])
			if m[1] == "firewall" {
				res.Firewall = &b
			} else {
				res.LinkDown = &b
			}
			continue
		}
		if !lxcNetType.MatchString(seg) {
			p.Log.Warn("could not parse LXC network string", map[string]interface{}{
				"format":  FormatLxcNet,
				"segment": seg,
			})
		}
	}
	return res, nil
}

func (n *LxcNetwork) field(key string) *string {
	switch key {
	case "name":
		return &n.Name
	case "bridge":
		return &n.Bridge
	case "hwaddr":
		return &n.HWAddr
	case "ip":
		return &n.IP
	case "gw":
		return &n.Gateway
	case "ip6":
		return &n.IP6
	case "gw6":
		return &n.Gateway6
	case "tag":
		return &n.Tag
	case "rate":
		return &n.Rate
	case "mtu":
		return &n.MTU
	}
	panic("unreachable: unknown lxc network key " + key)
}

// PrintLxcNetwork renders net.
func (p Parser) PrintLxcNetwork(net LxcNetwork) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("name", net.Name)
	add("bridge", net.Bridge)
	add("hwaddr", net.HWAddr)
	add("ip", net.IP)
	add("gw", net.Gateway)
	add("ip6", net.IP6)
	add("gw6", net.Gateway6)
	add("tag", net.Tag)
	add("rate", net.Rate)
	add("mtu", net.MTU)
	if net.Firewall != nil {
		add("firewall", flag(*net.Firewall))
	}
	if net.LinkDown != nil {
		add("link_down", flag(*net.LinkDown))
	}
	return strings.Join(parts, ",")
}
