package metrics

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/doridoridoriand/pvecfg/internal/config"
	"github.com/doridoridoriand/pvecfg/internal/state"
	"github.com/doridoridoriand/pvecfg/internal/usage"
)

type fakeStore struct {
	snapshot []state.ResourceStatus
}

func (f fakeStore) UpdateResources(resources []usage.Resource) {}

func (f fakeStore) GetSnapshot() []state.ResourceStatus {
	return f.snapshot
}

func (f fakeStore) GetResource(id string) (usage.Resource, bool) {
	return usage.Resource{}, false
}

func (f fakeStore) Host(node string) (usage.Resource, bool) {
	return usage.Resource{}, false
}

func TestWriteAggregated(t *testing.T) {
	snapshot := []state.ResourceStatus{
		{State: state.StatusRunning},
		{State: state.StatusRunning},
		{State: state.StatusStopped},
		{State: state.StatusUnknown},
	}
	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)
	writeAggregated(writer, snapshot)
	_ = writer.Flush()

	got := buf.String()
	expected := strings.Join([]string{
		"pvecfg_resources_total 4",
		"pvecfg_resources_running 2",
		"pvecfg_resources_stopped 1",
		"pvecfg_resources_unknown 1",
		"",
	}, "\n")
	if got != expected {
		t.Fatalf("unexpected aggregated metrics:\n%s", got)
	}
}

func TestWritePerResource(t *testing.T) {
	snapshot := []state.ResourceStatus{
		{
			Resource:     usage.Resource{ID: "qemu/100", Type: "qemu", Node: `pve"1`},
			State:        state.StatusRunning,
			MemUsage:     0.25,
			HostMemUsage: usage.Unavailable,
			DiskUsage:    0.5,
			HostCPU:      usage.Unavailable,
		},
		{
			Resource:     usage.Resource{ID: "lxc/101", Type: "lxc", Node: `pve\2`},
			State:        state.StatusStopped,
			MemUsage:     usage.Unavailable,
			HostMemUsage: usage.Unavailable,
			DiskUsage:    usage.Unavailable,
			HostCPU:      usage.Unavailable,
		},
	}

	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)
	writePerResource(writer, snapshot)
	_ = writer.Flush()

	labels1 := `id="qemu/100",type="qemu",node="pve\"1"`
	labels2 := `id="lxc/101",type="lxc",node="pve\\2"`
	expected := strings.Join([]string{
		"pvecfg_resource_up{" + labels1 + "} 1",
		"pvecfg_resource_mem_usage_ratio{" + labels1 + "} 0.25",
		"pvecfg_resource_disk_usage_ratio{" + labels1 + "} 0.5",
		"pvecfg_resource_up{" + labels2 + "} 0",
		"",
	}, "\n")
	if buf.String() != expected {
		t.Fatalf("unexpected per-resource metrics:\n%s", buf.String())
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel(`value"slash\`); got != `value\"slash\\` {
		t.Fatalf("unexpected escaped label: %q", got)
	}
}

func TestWriterModes(t *testing.T) {
	store := fakeStore{snapshot: []state.ResourceStatus{
		{Resource: usage.Resource{ID: "node/pve1", Type: "node"}, State: state.StatusRunning, MemUsage: 0.5, HostMemUsage: -1, DiskUsage: -1, HostCPU: -1},
	}}

	tests := []struct {
		mode          config.MetricsMode
		wantAggregate bool
		wantPer       bool
	}{
		{mode: config.MetricsModeAggregated, wantAggregate: true},
		{mode: config.MetricsModePerResource, wantPer: true},
		{mode: config.MetricsModeBoth, wantAggregate: true, wantPer: true},
		{mode: ""},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		n, err := NewWriter(test.mode, store).WriteTo(&buf)
		if err != nil {
			t.Fatalf("WriteTo error: %v", err)
		}
		if n != int64(buf.Len()) {
			t.Fatalf("expected byte count %d, got %d", buf.Len(), n)
		}
		body := buf.String()
		if got := strings.Contains(body, "pvecfg_resources_total 1"); got != test.wantAggregate {
			t.Errorf("mode %q: aggregated output present=%v, want %v:\n%s", test.mode, got, test.wantAggregate, body)
		}
		if got := strings.Contains(body, "pvecfg_resource_up{"); got != test.wantPer {
			t.Errorf("mode %q: per-resource output present=%v, want %v:\n%s", test.mode, got, test.wantPer, body)
		}
	}
}

func TestWriterWithStore(t *testing.T) {
	mem := 2048.0
	store := state.NewStore([]usage.Resource{
		{ID: "node/pve1", Type: usage.TypeNode, Node: "pve1", Status: "online", MaxMem: 8192},
		{ID: "qemu/100", Type: usage.TypeQemu, Node: "pve1", Status: "running", Uptime: 5, Mem: &mem, MaxMem: 4096},
	})

	var buf bytes.Buffer
	if _, err := NewWriter(config.MetricsModePerResource, store).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}
	want := `pvecfg_resource_hostmem_usage_ratio{id="qemu/100",type="qemu",node="pve1"} 0.25`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected %q in output:\n%s", want, buf.String())
	}
}
