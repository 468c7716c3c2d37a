package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/config"
)

// OptionalString records a string flag and whether it was set.
type OptionalString struct {
	value string
	set   bool
}

func (o *OptionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *OptionalString) String() string {
	if !o.set {
		return ""
	}
	return o.value
}

func (o *OptionalString) Type() string {
	return "string"
}

func (o *OptionalString) Value() (string, bool) {
	return o.value, o.set
}

// OptionalBool records a bool flag and whether it was set.
type OptionalBool struct {
	value bool
	set   bool
}

func (o *OptionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *OptionalBool) String() string {
	if !o.set {
		return ""
	}
	if o.value {
		return "true"
	}
	return "false"
}

func (o *OptionalBool) Type() string {
	return "bool"
}

func (o *OptionalBool) IsBoolFlag() bool {
	return true
}

func (o *OptionalBool) Value() (bool, bool) {
	return o.value, o.set
}

// OptionalList records a comma separated list flag and whether it was set.
// Repeated flags append.
type OptionalList struct {
	values []string
	set    bool
}

func (o *OptionalList) Set(s string) error {
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			return fmt.Errorf("empty list element in %q", s)
		}
		o.values = append(o.values, v)
	}
	o.set = true
	return nil
}

func (o *OptionalList) String() string {
	if !o.set {
		return ""
	}
	return strings.Join(o.values, ",")
}

func (o *OptionalList) Type() string {
	return "list"
}

func (o *OptionalList) Value() ([]string, bool) {
	return o.values, o.set
}

// OptionalMetricsMode records a metrics mode flag and whether it was set.
type OptionalMetricsMode struct {
	value config.MetricsMode
	set   bool
}

func (o *OptionalMetricsMode) Set(s string) error {
	mode, err := config.ParseMetricsMode(s)
	if err != nil {
		return fmt.Errorf("invalid metrics mode: %q (valid values: %s, %s, %s)", s,
			config.MetricsModePerResource, config.MetricsModeAggregated, config.MetricsModeBoth)
	}
	o.value = mode
	o.set = true
	return nil
}

func (o *OptionalMetricsMode) String() string {
	if !o.set {
		return ""
	}
	return string(o.value)
}

func (o *OptionalMetricsMode) Type() string {
	return "mode"
}

func (o *OptionalMetricsMode) Value() (config.MetricsMode, bool) {
	return o.value, o.set
}

// OptionalOutput records an output format flag and whether it was set.
type OptionalOutput struct {
	value config.OutputFormat
	set   bool
}

func (o *OptionalOutput) Set(s string) error {
	format, err := config.ParseOutputFormat(s)
	if err != nil {
		return fmt.Errorf("invalid output format: %q (valid values: %s, %s, %s)", s,
			config.OutputText, config.OutputJSON, config.OutputYAML)
	}
	o.value = format
	o.set = true
	return nil
}

func (o *OptionalOutput) String() string {
	if !o.set {
		return ""
	}
	return string(o.value)
}

func (o *OptionalOutput) Type() string {
	return "format"
}

func (o *OptionalOutput) Value() (config.OutputFormat, bool) {
	return o.value, o.set
}
