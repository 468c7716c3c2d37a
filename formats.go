package main

import (
	"fmt"
	"sort"

	"github.com/doridoridoriand/pvecfg/internal/parser"
	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// decoded is the typed record of a property string together with its
// canonical encoding.
type decoded struct {
	Record     interface{}
	Normalized string
}

// decodeFunc decodes value. key is the configuration key for drives and the
// default key for generic property strings.
type decodeFunc func(p parser.Parser, value, key string) (decoded, error)

const formatTfaType = "tfa-type"

var formats = map[string]decodeFunc{
	parser.FormatProperty: func(p parser.Parser, value, key string) (decoded, error) {
		m, err := p.ParsePropertyString(value, key)
		if err != nil {
			return decoded{}, err
		}
		return decoded{m, p.PrintPropertyString(m, key)}, nil
	},
	parser.FormatQemuNet: func(p parser.Parser, value, _ string) (decoded, error) {
		net, err := p.ParseQemuNetwork(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{net, p.PrintQemuNetwork(net)}, nil
	},
	parser.FormatLxcNet: func(p parser.Parser, value, _ string) (decoded, error) {
		net, err := p.ParseLxcNetwork(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{net, p.PrintLxcNetwork(net)}, nil
	},
	parser.FormatDrive: func(p parser.Parser, value, key string) (decoded, error) {
		if key == "" {
			return decoded{}, fmt.Errorf("%s needs the drive key, e.g. --key scsi0", parser.FormatDrive)
		}
		d, err := p.ParseQemuDrive(key, value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{d, p.PrintQemuDrive(d)}, nil
	},
	parser.FormatMountPoint: func(p parser.Parser, value, _ string) (decoded, error) {
		mp, err := p.ParseLxcMountPoint(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{mp, p.PrintLxcMountPoint(mp)}, nil
	},
	parser.FormatIPConfig: func(p parser.Parser, value, _ string) (decoded, error) {
		cfg, err := p.ParseIPConfig(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{cfg, p.PrintIPConfig(cfg)}, nil
	},
	parser.FormatStartup: func(p parser.Parser, value, _ string) (decoded, error) {
		s, err := p.ParseStartup(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{s, p.PrintStartup(s)}, nil
	},
	parser.FormatCPU: func(p parser.Parser, value, _ string) (decoded, error) {
		cpu, err := p.ParseQemuCPU(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{cpu, p.PrintQemuCPU(cpu)}, nil
	},
	parser.FormatSmbios: func(p parser.Parser, value, _ string) (decoded, error) {
		s, err := p.ParseQemuSmbios1(value)
		if err != nil {
			return decoded{}, err
		}
		return decoded{s, p.PrintQemuSmbios1(s)}, nil
	},
	parser.FormatSSHKey: func(p parser.Parser, value, _ string) (decoded, error) {
		k, ok := p.ParseSSHKey(value)
		if !ok {
			return decoded{}, propstr.Errorf(parser.FormatSSHKey, propstr.ErrPatternMismatch, "")
		}
		return decoded{k, p.PrintSSHKey(k)}, nil
	},
	parser.FormatACME: func(p parser.Parser, value, _ string) (decoded, error) {
		cfg, err := p.ParseACME(value)
		if err != nil {
			return decoded{}, err
		}
		if _, err := cfg.ASCIIDomains(); err != nil {
			return decoded{}, err
		}
		return decoded{cfg, p.PrintACME(cfg)}, nil
	},
	parser.FormatACMEPlugin: func(p parser.Parser, value, _ string) (decoded, error) {
		data, extra := p.ParseACMEPluginData(value)
		rec := struct {
			Data  map[string]string `json:"data" yaml:"data"`
			Extra []string          `json:"extra,omitempty" yaml:"extra,omitempty"`
		}{data, extra}
		return decoded{rec, p.PrintACMEPluginData(data, extra)}, nil
	},
	parser.FormatTfa: func(p parser.Parser, value, _ string) (decoded, error) {
		m := p.ParseTfaConfig(value)
		return decoded{m, p.PrintPropertyString(m, "")}, nil
	},
	formatTfaType: func(p parser.Parser, value, _ string) (decoded, error) {
		typ, ok := p.ParseTfaType(value)
		if !ok {
			return decoded{}, propstr.Errorf(parser.FormatTfa, propstr.ErrMissingField, "")
		}
		rec := struct {
			Type string `json:"type" yaml:"type"`
		}{typ}
		return decoded{rec, typ}, nil
	},
}

func formatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFormat(name string) (decodeFunc, error) {
	fn, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (valid formats: %v)", name, formatNames())
	}
	return fn, nil
}
