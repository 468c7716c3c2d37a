// Package parser converts the configuration property strings stored by the
// virtualization platform into typed records and back.
//
// Each grammar keeps its own failure policy. Most parsers reject the whole
// string on the first token they do not understand; the container network
// parser skips such tokens with a warning; the SSH key parser reports a
// non-match rather than an error. Printers never fail and emit fields in
// declaration order, skipping empty values.
package parser

import (
	"github.com/doridoridoriand/pvecfg/internal/log"
	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

// Format names used in errors and log entries.
const (
	FormatProperty   = "property-string"
	FormatQemuNet    = "qemu-net"
	FormatLxcNet     = "lxc-net"
	FormatDrive      = "qemu-drive"
	FormatMountPoint = "lxc-mp"
	FormatIPConfig   = "ipconfig"
	FormatStartup    = "startup"
	FormatCPU        = "qemu-cpu"
	FormatSmbios     = "smbios1"
	FormatACME       = "acme"
	FormatACMEPlugin = "acme-plugin"
	FormatSSHKey     = "ssh-key"
	FormatTfa        = "tfa"
)

// Parser holds the logger that receives warnings from the grammars that
// degrade gracefully. The zero value is ready to use and discards warnings.
type Parser struct {
	Log *log.Logger
}

// New returns a Parser logging to l.
func New(l *log.Logger) Parser {
	return Parser{Log: l}
}

// ParsePropertyString parses a generic property string, logging failures.
func (p Parser) ParsePropertyString(value, defaultKey string) (map[string]string, error) {
	res, err := propstr.Parse(value, defaultKey)
	if err != nil {
		p.Log.LogParseFailure(FormatProperty, value, err)
		return nil, err
	}
	return res, nil
}

// PrintPropertyString is the inverse of ParsePropertyString.
func (p Parser) PrintPropertyString(data map[string]string, defaultKey string) string {
	return propstr.Print(data, defaultKey)
}

// fail builds the error for format and, when warn is set, logs it.
func (p Parser) fail(format, raw string, err error, segment string, warn bool) error {
	perr := propstr.Errorf(format, err, segment)
	if warn {
		p.Log.LogParseFailure(format, raw, perr)
	}
	return perr
}
