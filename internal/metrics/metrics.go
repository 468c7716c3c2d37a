package metrics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/config"
	"github.com/doridoridoriand/pvecfg/internal/state"
	"github.com/doridoridoriand/pvecfg/internal/usage"
)

// Writer renders Prometheus-style usage metrics from a resource store.
type Writer struct {
	mode  config.MetricsMode
	store state.Store
}

// NewWriter constructs a metrics writer.
func NewWriter(mode config.MetricsMode, store state.Store) *Writer {
	return &Writer{mode: mode, store: store}
}

// WriteTo writes the metrics of the current snapshot to w in text
// exposition format.
func (m *Writer) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	m.writeMetrics(bw)
	err := bw.Flush()
	return cw.n, err
}

func (m *Writer) writeMetrics(w *bufio.Writer) {
	snapshot := m.store.GetSnapshot()
	if m.mode == "" {
		return
	}

	if m.mode == config.MetricsModeAggregated || m.mode == config.MetricsModeBoth {
		writeAggregated(w, snapshot)
	}
	if m.mode == config.MetricsModePerResource || m.mode == config.MetricsModeBoth {
		writePerResource(w, snapshot)
	}
}

func writeAggregated(w *bufio.Writer, snapshot []state.ResourceStatus) {
	total := len(snapshot)
	var runningCount, stoppedCount, unknownCount int
	for _, r := range snapshot {
		switch r.State {
		case state.StatusRunning:
			runningCount++
		case state.StatusStopped:
			stoppedCount++
		default:
			unknownCount++
		}
	}
	fmt.Fprintf(w, "pvecfg_resources_total %d\n", total)
	fmt.Fprintf(w, "pvecfg_resources_running %d\n", runningCount)
	fmt.Fprintf(w, "pvecfg_resources_stopped %d\n", stoppedCount)
	fmt.Fprintf(w, "pvecfg_resources_unknown %d\n", unknownCount)
}

func writePerResource(w *bufio.Writer, snapshot []state.ResourceStatus) {
	for _, r := range snapshot {
		labels := fmt.Sprintf(
			`id="%s",type="%s",node="%s"`,
			escapeLabel(r.ID),
			escapeLabel(r.Type),
			escapeLabel(r.Node),
		)
		up := 0
		if r.State == state.StatusRunning {
			up = 1
		}
		fmt.Fprintf(w, "pvecfg_resource_up{%s} %d\n", labels, up)
		writeRatio(w, "pvecfg_resource_mem_usage_ratio", labels, r.MemUsage)
		writeRatio(w, "pvecfg_resource_hostmem_usage_ratio", labels, r.HostMemUsage)
		writeRatio(w, "pvecfg_resource_disk_usage_ratio", labels, r.DiskUsage)
		writeRatio(w, "pvecfg_resource_hostcpu_ratio", labels, r.HostCPU)
	}
}

// writeRatio skips unavailable values rather than exporting the sentinel.
func writeRatio(w *bufio.Writer, name, labels string, v float64) {
	if v == usage.Unavailable {
		return
	}
	fmt.Fprintf(w, "%s{%s} %s\n", name, labels, strconv.FormatFloat(v, 'g', -1, 64))
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
