package config

// MetricsMode describes the granularity of exported usage metrics.
type MetricsMode string

const (
	MetricsModePerResource MetricsMode = "per-resource"
	MetricsModeAggregated  MetricsMode = "aggregated"
	MetricsModeBoth        MetricsMode = "both"
)

// OutputFormat selects how commands render their results.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Settings holds tool settings parsed from the settings file and CLI
// overrides.
type Settings struct {
	LogLevel    string       `toml:"log_level"`
	Output      OutputFormat `toml:"output"`
	Controllers []string     `toml:"controllers"`
	OSType      string       `toml:"ostype"`
	MetricsMode MetricsMode  `toml:"metrics_mode"`
}

// CLIOverrides holds optional CLI values that override settings file values.
type CLIOverrides struct {
	LogLevel    *string
	Output      *OutputFormat
	Controllers []string
	OSType      *string
	MetricsMode *MetricsMode
}

// GuestConfig is the stored configuration of one virtual machine or
// container.
type GuestConfig struct {
	// Description is the free text kept as leading '#' comments.
	Description string                       `json:"description,omitempty" yaml:"description,omitempty"`
	Values      map[string]string            `json:"values" yaml:"values"`
	Snapshots   map[string]map[string]string `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
}

// IsContainer reports whether g describes a container rather than a
// virtual machine.
func (g *GuestConfig) IsContainer() bool {
	_, ok := g.Values["rootfs"]
	return ok
}

// Parser defines config loading behavior.
type Parser interface {
	LoadSettings(path string, overrides CLIOverrides) (*Settings, error)
	LoadGuestConfig(path string) (*GuestConfig, error)
	ParseGuestLine(line string) (key, value string, err error)
}
