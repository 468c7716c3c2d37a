// Package slot allocates device attachment points on the guest buses.
package slot

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bus is a device attachment bus type.
type Bus string

const (
	IDE    Bus = "ide"
	SATA   Bus = "sata"
	SCSI   Bus = "scsi"
	VirtIO Bus = "virtio"
	Unused Bus = "unused"
	MP     Bus = "mp"
)

var capacity = map[Bus]int{
	IDE:    4,
	SATA:   6,
	SCSI:   31,
	VirtIO: 16,
	Unused: 256,
	MP:     256,
}

// DiskBuses lists the buses a virtual machine disk may be attached to, in
// the order used when no explicit list is given.
var DiskBuses = []Bus{IDE, SATA, SCSI, VirtIO, Unused}

// Capacity returns the number of slots on b, or 0 for an unknown bus.
func Capacity(b Bus) int {
	return capacity[b]
}

// Known reports whether b has a capacity entry.
func Known(b Bus) bool {
	_, ok := capacity[b]
	return ok
}

// Slot identifies a device attachment point such as scsi0.
type Slot struct {
	Bus   Bus `json:"controller" yaml:"controller"`
	Index int `json:"id" yaml:"id"`
}

// ConfID returns the configuration key for s.
func (s Slot) ConfID() string {
	return string(s.Bus) + strconv.Itoa(s.Index)
}

func (s Slot) String() string { return s.ConfID() }

var keyPattern = regexp.MustCompile(`^([a-z]+)(\d+)$`)

// ParseKey parses a configuration key such as "virtio3". The index of a
// known bus must be below that bus's capacity; other buses are accepted
// without a bound.
func ParseKey(key string) (Slot, error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return Slot{}, fmt.Errorf("invalid slot key: %q", key)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return Slot{}, fmt.Errorf("invalid slot index: %w", err)
	}
	s := Slot{Bus: Bus(m[1]), Index: idx}
	if n, ok := capacity[s.Bus]; ok && idx >= n {
		return Slot{}, fmt.Errorf("slot %s out of range: %s has %d slots", key, s.Bus, n)
	}
	return s, nil
}

// ForEachBus calls fn for each slot of each bus in buses, in order, until fn
// returns false. A nil buses iterates all disk buses. An unknown bus is an
// error and nothing is visited.
func ForEachBus(buses []Bus, fn func(Slot) bool) error {
	if buses == nil {
		buses = DiskBuses
	}
	for _, b := range buses {
		if b == MP || !Known(b) {
			return fmt.Errorf("invalid bus: %q", b)
		}
	}
	for _, b := range buses {
		for i := 0; i < capacity[b]; i++ {
			if !fn(Slot{Bus: b, Index: i}) {
				return nil
			}
		}
	}
	return nil
}

// ForEachMP calls fn for each mount point slot, followed by the unused
// slots when includeUnused is set, until fn returns false.
func ForEachMP(includeUnused bool, fn func(Slot) bool) {
	for i := 0; i < capacity[MP]; i++ {
		if !fn(Slot{Bus: MP, Index: i}) {
			return
		}
	}
	if !includeUnused {
		return
	}
	for i := 0; i < capacity[Unused]; i++ {
		if !fn(Slot{Bus: Unused, Index: i}) {
			return
		}
	}
}

// NextFreeDisk returns the first slot, scanning controllers in order and
// each from index 0, that is not a key of config. A nil controllers scans
// all disk buses. It reports false when every candidate slot is occupied or
// a controller is not a disk bus.
func NextFreeDisk(controllers []Bus, config map[string]string) (Slot, bool) {
	var found Slot
	ok := false
	err := ForEachBus(controllers, func(s Slot) bool {
		found, ok = s, isFree(s, config)
		return !ok
	})
	if err != nil || !ok {
		return Slot{}, false
	}
	return found, true
}

// NextFreeMP is NextFreeDisk for container mount points of bus typ, which
// is MP or Unused.
func NextFreeMP(typ Bus, config map[string]string) (Slot, bool) {
	if typ != MP && typ != Unused {
		return Slot{}, false
	}
	var found Slot
	ok := false
	ForEachMP(typ == Unused, func(s Slot) bool {
		if s.Bus != typ {
			return true
		}
		found, ok = s, isFree(s, config)
		return !ok
	})
	if !ok {
		return Slot{}, false
	}
	return found, true
}

func isFree(s Slot, config map[string]string) bool {
	_, used := config[s.ConfID()]
	return !used
}
