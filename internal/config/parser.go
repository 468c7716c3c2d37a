package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/doridoridoriand/pvecfg/internal/slot"
)

// FileParser implements the Parser interface.
type FileParser struct{}

// DefaultSettings returns baseline settings used before file and CLI
// overrides.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:    "warn",
		Output:      OutputText,
		Controllers: nil,
		OSType:      "",
		MetricsMode: MetricsModePerResource,
	}
}

// DefaultSettingsPath returns the settings file location under the XDG
// config directory.
func DefaultSettingsPath() string {
	return filepath.Join(xdgBase("XDG_CONFIG_HOME", ".config"), "pvecfg", "config.toml")
}

func xdgBase(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// LoadSettings reads the TOML settings file at path with CLI overrides
// applied. An empty path means DefaultSettingsPath, which may be absent.
func (p FileParser) LoadSettings(path string, overrides CLIOverrides) (*Settings, error) {
	settings := DefaultSettings()

	optional := path == ""
	if optional {
		path = DefaultSettingsPath()
	}
	// Unknown keys are ignored for forward compatibility.
	_, err := toml.DecodeFile(path, &settings)
	switch {
	case err == nil:
	case optional && errors.Is(err, fs.ErrNotExist):
		settings = DefaultSettings()
	default:
		return nil, err
	}

	applyCLIOverrides(&settings, overrides)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks every setting against its allowed values.
func (s Settings) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", s.LogLevel)
	}
	if _, err := ParseOutputFormat(string(s.Output)); err != nil {
		return err
	}
	if _, err := ParseMetricsMode(string(s.MetricsMode)); err != nil {
		return err
	}
	if _, err := ParseControllers(s.Controllers); err != nil {
		return err
	}
	return nil
}

// ParseOutputFormat validates an output format name.
func ParseOutputFormat(val string) (OutputFormat, error) {
	switch OutputFormat(val) {
	case OutputText, OutputJSON, OutputYAML:
		return OutputFormat(val), nil
	}
	return "", fmt.Errorf("invalid output: %q", val)
}

// ParseMetricsMode validates a metrics mode name.
func ParseMetricsMode(val string) (MetricsMode, error) {
	switch MetricsMode(val) {
	case MetricsModePerResource, MetricsModeAggregated, MetricsModeBoth:
		return MetricsMode(val), nil
	}
	return "", fmt.Errorf("invalid metrics_mode: %q", val)
}

// ParseControllers converts controller names to disk buses. Only buses that
// can hold a new disk are allowed.
func ParseControllers(names []string) ([]slot.Bus, error) {
	res := make([]slot.Bus, 0, len(names))
	for _, n := range names {
		b := slot.Bus(strings.TrimSpace(n))
		switch b {
		case slot.IDE, slot.SATA, slot.SCSI, slot.VirtIO:
			res = append(res, b)
		default:
			return nil, fmt.Errorf("invalid controller: %q", n)
		}
	}
	return res, nil
}

func applyCLIOverrides(settings *Settings, overrides CLIOverrides) {
	if overrides.LogLevel != nil {
		settings.LogLevel = *overrides.LogLevel
	}
	if overrides.Output != nil {
		settings.Output = *overrides.Output
	}
	if overrides.Controllers != nil {
		settings.Controllers = overrides.Controllers
	}
	if overrides.OSType != nil {
		settings.OSType = *overrides.OSType
	}
	if overrides.MetricsMode != nil {
		settings.MetricsMode = *overrides.MetricsMode
	}
}
