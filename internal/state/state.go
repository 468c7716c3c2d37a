package state

import (
	"github.com/doridoridoriand/pvecfg/internal/usage"
)

// Status represents the run state of a resource.
type Status string

const (
	StatusUnknown Status = "UNKNOWN"
	StatusRunning Status = "RUNNING"
	StatusStopped Status = "STOPPED"
)

// StatusOf maps the status string reported by the platform to a Status.
// Hosts report "online"/"offline", storages "available".
func StatusOf(r usage.Resource) Status {
	switch r.Status {
	case "running", "online", "available":
		return StatusRunning
	case "stopped", "offline", "unavailable":
		return StatusStopped
	}
	return StatusUnknown
}

// ResourceStatus captures a resource together with its derived usage
// ratios. A ratio is usage.Unavailable when it cannot be derived.
type ResourceStatus struct {
	usage.Resource `yaml:",inline"`

	State        Status  `json:"state" yaml:"state"`
	MemUsage     float64 `json:"mem_usage" yaml:"mem_usage"`
	HostMemUsage float64 `json:"hostmem_usage" yaml:"hostmem_usage"`
	DiskUsage    float64 `json:"disk_usage" yaml:"disk_usage"`
	HostCPU      float64 `json:"hostcpu" yaml:"hostcpu"`
}

// Store defines operations on the cluster resource index.
type Store interface {
	UpdateResources(resources []usage.Resource)
	GetSnapshot() []ResourceStatus
	GetResource(id string) (usage.Resource, bool)
	Host(node string) (usage.Resource, bool)
}
