package parser

import (
	"regexp"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
	"github.com/doridoridoriand/pvecfg/internal/slot"
)

// Drive is a virtual machine disk or CD-ROM attached to a bus slot.
type Drive struct {
	Interface slot.Bus           `json:"interface" yaml:"interface"`
	Index     int                `json:"index" yaml:"index"`
	File      string             `json:"file" yaml:"file"`
	Options   propstr.Properties `json:"options,omitempty" yaml:"options,omitempty"`
}

// Key returns the configuration key of d, e.g. "scsi0".
func (d Drive) Key() string {
	return slot.Slot{Bus: d.Interface, Index: d.Index}.ConfID()
}

// IsCDROM reports whether d is CD-ROM media.
func (d Drive) IsCDROM() bool {
	v, _ := d.Options.Get("media")
	return v == "cdrom"
}

var (
	driveOption = regexp.MustCompile(`^([a-z_]+)=(\S+)$`)
	mpOption    = regexp.MustCompile(`^([a-z_]+)=(.+)$`)
	volumeID    = regexp.MustCompile(`(?i)^([a-z][a-z0-9\-_.]*[a-z0-9]):`)
)

// ParseQemuDrive parses the value of drive key, e.g. key "scsi0" and value
// "local-lvm:vm-100-disk-0,cache=writeback,size=32G". "volume" is an alias
// for the positional file and "cache=off" is normalised to "cache=none".
func (p Parser) ParseQemuDrive(key, value string) (Drive, error) {
	if key == "" || value == "" {
		return Drive{}, p.fail(FormatDrive, value, propstr.ErrMissingField, "", false)
	}
	s, err := slot.ParseKey(key)
	if err != nil {
		return Drive{}, p.fail(FormatDrive, value, propstr.ErrPatternMismatch, key, false)
	}

	res := Drive{Interface: s.Bus, Index: s.Index}
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		m := driveOption.FindStringSubmatch(seg)
		if m == nil {
			if strings.Contains(seg, "=") {
				return Drive{}, p.fail(FormatDrive, value, propstr.ErrUnrecognizedToken, seg, false)
			}
			m = []string{seg, "file", seg}
		}
		k, v := m[1], m[2]
		if k == "volume" {
			k = "file"
		}
		if k == "cache" && v == "off" {
			v = "none"
		}

		if k == "file" {
			if res.File != "" {
				return Drive{}, p.fail(FormatDrive, value, propstr.ErrDuplicateKey, seg, false)
			}
			res.File = v
			continue
		}
		if res.Options.Has(k) {
			return Drive{}, p.fail(FormatDrive, value, propstr.ErrDuplicateKey, seg, false)
		}
		res.Options.Set(k, v)
	}

	if res.File == "" {
		return Drive{}, p.fail(FormatDrive, value, propstr.ErrMissingField, "file", false)
	}
	return res, nil
}

// AttachedDisks counts the drives in a virtual machine config per disk
// bus, leaving out CD-ROM media. A value that does not decode still counts
// as a disk.
func (p Parser) AttachedDisks(config map[string]string) map[slot.Bus]int {
	used := make(map[slot.Bus]int)
	for key, value := range config {
		s, err := slot.ParseKey(key)
		if err != nil {
			continue
		}
		switch s.Bus {
		case slot.IDE, slot.SATA, slot.SCSI, slot.VirtIO:
		default:
			continue
		}
		if d, err := p.ParseQemuDrive(key, value); err == nil && d.IsCDROM() {
			continue
		}
		used[s.Bus]++
	}
	return used
}

// PrintQemuDrive renders d as the value for d.Key().
func (p Parser) PrintQemuDrive(d Drive) string {
	return d.File + d.Options.String()
}

// MountType classifies the source of a container mount point.
type MountType string

const (
	MountVolume MountType = "volume"
	MountDevice MountType = "device"
	MountBind   MountType = "bind"
)

// MountPoint is a container root filesystem or mount point.
type MountPoint struct {
	File    string             `json:"file" yaml:"file"`
	Type    MountType          `json:"type" yaml:"type"`
	Storage string             `json:"storage,omitempty" yaml:"storage,omitempty"`
	Options propstr.Properties `json:"options,omitempty" yaml:"options,omitempty"`
}

// ParseLxcMountPoint parses a mount point such as
// "local-lvm:subvol-100-disk-1,mp=/srv,size=8G". The source is classified
// as a storage volume, a host device or a bind mount.
func (p Parser) ParseLxcMountPoint(value string) (MountPoint, error) {
	if value == "" {
		return MountPoint{}, p.fail(FormatMountPoint, value, propstr.ErrMissingField, "", false)
	}

	var res MountPoint
	for _, seg := range strings.Split(value, ",") {
		if propstr.IsBlank(seg) {
			continue
		}
		m := mpOption.FindStringSubmatch(seg)
		if m == nil {
			if strings.Contains(seg, "=") {
				return MountPoint{}, p.fail(FormatMountPoint, value, propstr.ErrUnrecognizedToken, seg, false)
			}
			m = []string{seg, "file", seg}
		}
		k, v := m[1], m[2]
		if k == "volume" {
			k = "file"
		}

		if k == "file" {
			if res.File != "" {
				return MountPoint{}, p.fail(FormatMountPoint, value, propstr.ErrDuplicateKey, seg, false)
			}
			res.File = v
			continue
		}
		if res.Options.Has(k) {
			return MountPoint{}, p.fail(FormatMountPoint, value, propstr.ErrDuplicateKey, seg, false)
		}
		res.Options.Set(k, v)
	}

	if res.File == "" {
		return MountPoint{}, p.fail(FormatMountPoint, value, propstr.ErrMissingField, "file", false)
	}

	switch {
	case volumeID.MatchString(res.File):
		res.Type = MountVolume
		res.Storage = volumeID.FindStringSubmatch(res.File)[1]
	case strings.HasPrefix(res.File, "/dev/"):
		res.Type = MountDevice
	default:
		res.Type = MountBind
	}
	return res, nil
}

// PrintLxcMountPoint renders mp. The derived type and storage are not
// written back.
func (p Parser) PrintLxcMountPoint(mp MountPoint) string {
	return mp.File + mp.Options.String()
}
