package slot

import "sort"

// OSDefaults holds the hardware defaults for a guest operating system type.
type OSDefaults struct {
	// BusType is the preferred disk bus for new disks.
	BusType Bus
	// NetworkCard is the preferred network model.
	NetworkCard string
	// BusPriority orders buses when their usage counts tie; higher wins.
	BusPriority map[Bus]int
}

var genericDefaults = OSDefaults{
	BusType:     IDE,
	NetworkCard: "e1000",
	BusPriority: map[Bus]int{IDE: 4, SATA: 3, SCSI: 2, VirtIO: 1},
}

var osDefaults = map[string]OSDefaults{
	"generic": genericDefaults,
	"l26": {
		BusType:     SCSI,
		NetworkCard: "virtio",
		BusPriority: map[Bus]int{SCSI: 4, VirtIO: 3, SATA: 2, IDE: 1},
	},
	"w2k8":  {BusType: SATA, NetworkCard: "e1000", BusPriority: genericDefaults.BusPriority},
	"win7":  {BusType: SATA, NetworkCard: "e1000", BusPriority: genericDefaults.BusPriority},
	"win8":  {BusType: SATA, NetworkCard: "e1000", BusPriority: genericDefaults.BusPriority},
	"win10": {BusType: SATA, NetworkCard: "e1000", BusPriority: genericDefaults.BusPriority},
	"win11": {BusType: SATA, NetworkCard: "e1000", BusPriority: genericDefaults.BusPriority},
}

var windowsTypes = map[string]bool{
	"win11": true,
	"win10": true,
	"win8":  true,
	"win7":  true,
	"w2k8":  true,
	"wxp":   true,
	"w2k":   true,
}

// DefaultsFor returns the defaults for ostype, falling back to the generic
// entry for unknown or empty types.
func DefaultsFor(ostype string) OSDefaults {
	if d, ok := osDefaults[ostype]; ok {
		return d
	}
	return genericDefaults
}

// IsWindows reports whether ostype is one of the Microsoft Windows types.
func IsWindows(ostype string) bool {
	return windowsTypes[ostype]
}

// DefaultControllers is the candidate list used by SortByPreviousUsage when
// none is given.
var DefaultControllers = []Bus{IDE, VirtIO, SCSI, SATA}

// SortByPreviousUsage orders controllers by used, the number of non CD-ROM
// disks already attached to each bus, most used first. Ties are broken by
// the bus priority of ostype. A guest without any disk gets the preferred
// bus of ostype first. The input slice is not modified. A nil controllers
// uses DefaultControllers.
func SortByPreviousUsage(used map[Bus]int, ostype string, controllers []Bus) []Bus {
	if controllers == nil {
		controllers = DefaultControllers
	}

	defaults := DefaultsFor(ostype)
	total := 0
	for _, n := range used {
		total += n
	}
	rank := func(b Bus) int {
		if total == 0 && b == defaults.BusType {
			return len(defaults.BusPriority) + 1
		}
		return defaults.BusPriority[b]
	}

	sorted := append([]Bus(nil), controllers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if used[a] != used[b] {
			return used[a] > used[b]
		}
		return rank(a) > rank(b)
	})
	return sorted
}
