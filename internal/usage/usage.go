// Package usage derives utilisation ratios of guests and hosts from cluster
// resource records and renders them for display.
package usage

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Unavailable is returned by the calculators when a ratio cannot be
// derived.
const Unavailable = -1

// Resource types.
const (
	TypeQemu    = "qemu"
	TypeLxc     = "lxc"
	TypeNode    = "node"
	TypeStorage = "storage"
)

// Resource is one entry of the cluster resource list. Numeric fields the
// API may omit are pointers; a nil pointer means "not reported".
type Resource struct {
	ID      string   `json:"id" yaml:"id"`
	Type    string   `json:"type" yaml:"type"`
	Node    string   `json:"node,omitempty" yaml:"node,omitempty"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Status  string   `json:"status,omitempty" yaml:"status,omitempty"`
	Uptime  int64    `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	CPU     *float64 `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	MaxCPU  float64  `json:"maxcpu,omitempty" yaml:"maxcpu,omitempty"`
	Mem     *float64 `json:"mem,omitempty" yaml:"mem,omitempty"`
	MaxMem  float64  `json:"maxmem,omitempty" yaml:"maxmem,omitempty"`
	Disk    *float64 `json:"disk,omitempty" yaml:"disk,omitempty"`
	MaxDisk float64  `json:"maxdisk,omitempty" yaml:"maxdisk,omitempty"`
}

// IsGuest reports whether r is a virtual machine or container.
func (r Resource) IsGuest() bool {
	return r.Type == TypeQemu || r.Type == TypeLxc
}

// HostLookup resolves the host record a guest runs on.
type HostLookup interface {
	Host(node string) (Resource, bool)
}

// HostID returns the resource id of the host named node.
func HostID(node string) string {
	return TypeNode + "/" + node
}

// MemUsage returns the used fraction of r's own memory.
func MemUsage(r Resource) float64 {
	if r.Mem == nil || r.MaxMem == 0 || r.Uptime < 1 {
		return Unavailable
	}
	return *r.Mem / r.MaxMem
}

// HostMemUsage returns the fraction of the host's memory that guest r
// uses. It is unavailable for non-guests and for guests whose host is
// unknown to hosts.
func HostMemUsage(r Resource, hosts HostLookup) float64 {
	if !r.IsGuest() {
		return Unavailable
	}
	host, ok := hosts.Host(r.Node)
	if !ok {
		return Unavailable
	}
	if r.Mem == nil || host.MaxMem == 0 || r.Uptime < 1 {
		return Unavailable
	}
	return *r.Mem / host.MaxMem
}

// DiskUsage returns the used fraction of r's disk. Stopped guests report
// no usage.
func DiskUsage(r Resource) float64 {
	if r.Disk == nil || (r.IsGuest() && r.Uptime == 0) || r.MaxDisk == 0 {
		return Unavailable
	}
	return *r.Disk / r.MaxDisk
}

// HostCPU returns the share of the host's CPUs that guest r consumes,
// scaled to the guest's own CPU count.
func HostCPU(r Resource, hosts HostLookup) float64 {
	if r.Uptime == 0 || r.CPU == nil || !r.IsGuest() {
		return Unavailable
	}
	host, ok := hosts.Host(r.Node)
	if !ok {
		return Unavailable
	}
	maxcpu := host.MaxCPU
	if maxcpu < 1 {
		maxcpu = 1
	}
	return *r.CPU / maxcpu * r.MaxCPU
}

// RenderPercent formats a ratio as "12.3 %". Unavailable renders as "".
func RenderPercent(ratio float64) string {
	if ratio < 0 {
		return ""
	}
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + " %"
}

// RenderCPU formats r's CPU load as "12.3% of 4 CPUs". It returns "" for
// stopped resources or when no load is reported.
func RenderCPU(r Resource) string {
	if r.Uptime == 0 || r.CPU == nil || r.MaxCPU == 0 {
		return ""
	}
	unit := "CPU"
	if r.MaxCPU > 1 {
		unit = "CPUs"
	}
	return fmt.Sprintf("%.1f%% of %s %s", *r.CPU*100, strconv.FormatFloat(r.MaxCPU, 'f', -1, 64), unit)
}

// RenderMemUsage formats the memory r uses as a binary size.
func RenderMemUsage(r Resource) string {
	if r.Uptime == 0 || r.Mem == nil || r.MaxMem == 0 {
		return ""
	}
	return humanize.IBytes(uint64(*r.Mem))
}

// RenderDiskUsage formats the disk space r uses as a binary size.
func RenderDiskUsage(r Resource) string {
	if DiskUsage(r) == Unavailable {
		return ""
	}
	return humanize.IBytes(uint64(*r.Disk))
}
