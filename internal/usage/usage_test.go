package usage

import "testing"

type hostMap map[string]Resource

func (m hostMap) Host(node string) (Resource, bool) {
	r, ok := m[HostID(node)]
	return r, ok
}

func f(v float64) *float64 { return &v }

func TestMemUsage(t *testing.T) {
	tests := []struct {
		name string
		r    Resource
		want float64
	}{
		{name: "running", r: Resource{Type: TypeQemu, Mem: f(512), MaxMem: 2048, Uptime: 10}, want: 0.25},
		{name: "no mem", r: Resource{Type: TypeQemu, MaxMem: 2048, Uptime: 10}, want: Unavailable},
		{name: "zero capacity", r: Resource{Type: TypeQemu, Mem: f(512), Uptime: 10}, want: Unavailable},
		{name: "stopped", r: Resource{Type: TypeLxc, Mem: f(512), MaxMem: 2048}, want: Unavailable},
		{name: "node", r: Resource{Type: TypeNode, Mem: f(1), MaxMem: 4, Uptime: 1}, want: 0.25},
	}
	for _, test := range tests {
		if got := MemUsage(test.r); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

func TestHostMemUsage(t *testing.T) {
	hosts := hostMap{
		"node/pve1": {ID: "node/pve1", Type: TypeNode, MaxMem: 8192},
		"node/pve2": {ID: "node/pve2", Type: TypeNode},
	}
	tests := []struct {
		name string
		r    Resource
		want float64
	}{
		{name: "guest", r: Resource{Type: TypeQemu, Node: "pve1", Mem: f(2048), Uptime: 5}, want: 0.25},
		{name: "storage", r: Resource{Type: TypeStorage, Node: "pve1", Mem: f(2048), Uptime: 5}, want: Unavailable},
		{name: "unknown host", r: Resource{Type: TypeLxc, Node: "pve9", Mem: f(2048), Uptime: 5}, want: Unavailable},
		{name: "host without memory", r: Resource{Type: TypeLxc, Node: "pve2", Mem: f(2048), Uptime: 5}, want: Unavailable},
		{name: "stopped", r: Resource{Type: TypeLxc, Node: "pve1", Mem: f(2048)}, want: Unavailable},
	}
	for _, test := range tests {
		if got := HostMemUsage(test.r, hosts); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

func TestDiskUsage(t *testing.T) {
	tests := []struct {
		name string
		r    Resource
		want float64
	}{
		{name: "storage ignores uptime", r: Resource{Type: TypeStorage, Disk: f(25), MaxDisk: 100}, want: 0.25},
		{name: "stopped guest", r: Resource{Type: TypeQemu, Disk: f(25), MaxDisk: 100}, want: Unavailable},
		{name: "running guest", r: Resource{Type: TypeQemu, Disk: f(50), MaxDisk: 100, Uptime: 3}, want: 0.5},
		{name: "zero capacity", r: Resource{Type: TypeStorage, Disk: f(25)}, want: Unavailable},
		{name: "no disk", r: Resource{Type: TypeStorage, MaxDisk: 100}, want: Unavailable},
	}
	for _, test := range tests {
		if got := DiskUsage(test.r); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

func TestHostCPU(t *testing.T) {
	hosts := hostMap{"node/pve1": {Type: TypeNode, MaxCPU: 8}}
	r := Resource{Type: TypeQemu, Node: "pve1", CPU: f(0.5), MaxCPU: 2, Uptime: 100}
	if got := HostCPU(r, hosts); got != 0.125 {
		t.Fatalf("expected 0.125, got %v", got)
	}
	r.Node = "pve2"
	if got := HostCPU(r, hosts); got != Unavailable {
		t.Fatalf("expected unavailable for unknown host, got %v", got)
	}
	r.Node, r.Uptime = "pve1", 0
	if got := HostCPU(r, hosts); got != Unavailable {
		t.Fatalf("expected unavailable for stopped guest, got %v", got)
	}
}

func TestRenderers(t *testing.T) {
	if got := RenderPercent(0.1234); got != "12.3 %" {
		t.Fatalf("unexpected percent %q", got)
	}
	if got := RenderPercent(Unavailable); got != "" {
		t.Fatalf("expected empty render for unavailable, got %q", got)
	}

	r := Resource{Type: TypeQemu, CPU: f(0.123), MaxCPU: 4, Mem: f(1 << 30), MaxMem: 4 << 30, Disk: f(512 << 20), MaxDisk: 32 << 30, Uptime: 60}
	if got := RenderCPU(r); got != "12.3% of 4 CPUs" {
		t.Fatalf("unexpected cpu render %q", got)
	}
	if got := RenderMemUsage(r); got != "1.0 GiB" {
		t.Fatalf("unexpected memory render %q", got)
	}
	if got := RenderDiskUsage(r); got != "512 MiB" {
		t.Fatalf("unexpected disk render %q", got)
	}

	r.MaxCPU = 1
	if got := RenderCPU(r); got != "12.3% of 1 CPU" {
		t.Fatalf("unexpected single cpu render %q", got)
	}

	r.Uptime = 0
	if RenderCPU(r) != "" || RenderMemUsage(r) != "" || RenderDiskUsage(r) != "" {
		t.Fatalf("expected empty renders for a stopped guest")
	}
}
