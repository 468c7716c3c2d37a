package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doridoridoriand/pvecfg/internal/config"
)

func TestOptionalString(t *testing.T) {
	var s OptionalString
	if s.String() != "" {
		t.Fatalf("expected empty string for unset string")
	}
	if _, ok := s.Value(); ok {
		t.Fatalf("expected unset string to report false")
	}
	if err := s.Set("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "hello" {
		t.Fatalf("expected string value to be hello, got %q", s.String())
	}
	if v, ok := s.Value(); !ok || v != "hello" {
		t.Fatalf("expected string value hello, got %q (ok=%v)", v, ok)
	}
}

func TestOptionalBool(t *testing.T) {
	var b OptionalBool
	if b.String() != "" {
		t.Fatalf("expected empty string for unset bool")
	}
	if _, ok := b.Value(); ok {
		t.Fatalf("expected unset bool to report false")
	}
	if !b.IsBoolFlag() {
		t.Fatalf("expected IsBoolFlag to return true")
	}
	if err := b.Set("true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.String() != "true" {
		t.Fatalf("expected bool string to be true, got %q", b.String())
	}
	if v, ok := b.Value(); !ok || v != true {
		t.Fatalf("expected bool value true, got %v (ok=%v)", v, ok)
	}
}

func TestOptionalBoolInvalid(t *testing.T) {
	var b OptionalBool
	if err := b.Set("bad"); err == nil {
		t.Fatalf("expected error for invalid bool")
	}
	if _, ok := b.Value(); ok {
		t.Fatalf("expected invalid bool to remain unset")
	}
}

func TestOptionalList(t *testing.T) {
	var l OptionalList
	if l.String() != "" {
		t.Fatalf("expected empty string for unset list")
	}
	if err := l.Set("scsi, virtio"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Set("sata"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := l.Value()
	if !ok || !cmp.Equal([]string{"scsi", "virtio", "sata"}, v) {
		t.Fatalf("expected appended list, got %v (ok=%v)", v, ok)
	}
	if l.String() != "scsi,virtio,sata" {
		t.Fatalf("unexpected list string %q", l.String())
	}

	var bad OptionalList
	if err := bad.Set("scsi,,sata"); err == nil {
		t.Fatalf("expected error for empty element")
	}
}

func TestOptionalMetricsMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected config.MetricsMode
		wantErr  bool
	}{
		{name: "per-resource mode", input: "per-resource", expected: config.MetricsModePerResource},
		{name: "aggregated mode", input: "aggregated", expected: config.MetricsModeAggregated},
		{name: "both mode", input: "both", expected: config.MetricsModeBoth},
		{name: "invalid mode", input: "invalid", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m OptionalMetricsMode

			if m.String() != "" {
				t.Fatalf("expected empty string for unset MetricsMode")
			}
			if _, ok := m.Value(); ok {
				t.Fatalf("expected unset MetricsMode to report false")
			}

			err := m.Set(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				if _, ok := m.Value(); ok {
					t.Fatalf("expected MetricsMode to remain unset after error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for input %q: %v", tt.input, err)
			}
			if m.String() != tt.input {
				t.Fatalf("expected string to be %q, got %q", tt.input, m.String())
			}
			if v, ok := m.Value(); !ok || v != tt.expected {
				t.Fatalf("expected MetricsMode value %q, got %q (ok=%v)", tt.expected, v, ok)
			}
		})
	}
}

func TestOptionalMetricsModeErrorMessages(t *testing.T) {
	var m OptionalMetricsMode
	err := m.Set("invalid-mode")
	if err == nil {
		t.Fatalf("expected error for invalid metrics mode")
	}

	expectedMsg := `invalid metrics mode: "invalid-mode" (valid values: per-resource, aggregated, both)`
	if err.Error() != expectedMsg {
		t.Fatalf("expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestOptionalOutput(t *testing.T) {
	var o OptionalOutput
	if err := o.Set("yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := o.Value(); !ok || v != config.OutputYAML {
		t.Fatalf("expected yaml, got %q (ok=%v)", v, ok)
	}

	var bad OptionalOutput
	err := bad.Set("xml")
	if err == nil {
		t.Fatalf("expected error for invalid output format")
	}
	expectedMsg := `invalid output format: "xml" (valid values: text, json, yaml)`
	if err.Error() != expectedMsg {
		t.Fatalf("expected error message %q, got %q", expectedMsg, err.Error())
	}
	if _, ok := bad.Value(); ok {
		t.Fatalf("expected invalid output to remain unset")
	}
}

func TestFlagTypesStringRepresentation(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func() (unsetStr, setStr string)
	}{
		{
			name: "OptionalString",
			testFunc: func() (string, string) {
				var s OptionalString
				unset := s.String()
				s.Set("test")
				return unset, s.String()
			},
		},
		{
			name: "OptionalBool",
			testFunc: func() (string, string) {
				var b OptionalBool
				unset := b.String()
				b.Set("false")
				return unset, b.String()
			},
		},
		{
			name: "OptionalList",
			testFunc: func() (string, string) {
				var l OptionalList
				unset := l.String()
				l.Set("ide")
				return unset, l.String()
			},
		},
		{
			name: "OptionalMetricsMode",
			testFunc: func() (string, string) {
				var m OptionalMetricsMode
				unset := m.String()
				m.Set("both")
				return unset, m.String()
			},
		},
		{
			name: "OptionalOutput",
			testFunc: func() (string, string) {
				var o OptionalOutput
				unset := o.String()
				o.Set("json")
				return unset, o.String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetStr, setStr := tt.testFunc()
			if unsetStr != "" {
				t.Fatalf("expected empty string for unset %s, got %q", tt.name, unsetStr)
			}
			if setStr == "" {
				t.Fatalf("expected non-empty string for set %s", tt.name)
			}
		})
	}
}
