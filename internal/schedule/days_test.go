package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

const everyDay DaySet = 1<<7 - 1

func TestRenderDaysOfWeek(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "mon,tue,wed", want: "Monday-Wednesday"},
		{in: "mon,wed", want: "Monday, Wednesday"},
		{in: "fri", want: "Friday"},
		{in: "sat,sun", want: "Saturday, Sunday"},
		{in: "mon,tue,wed,thu,fri,sat,sun", want: "Monday-Sunday"},
		{in: "sun,mon,tue,thu,fri,sat", want: "Monday, Tuesday, Thursday-Sunday"},
		{in: "wed,mon,tue", want: "Monday-Wednesday"},
		{in: "", want: ""},
	}
	for _, test := range tests {
		got, err := RenderDaysOfWeek(test.in)
		if err != nil {
			t.Errorf("RenderDaysOfWeek(%q) error: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("RenderDaysOfWeek(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestParseDaysRejects(t *testing.T) {
	for _, in := range []string{"monday", "Mon", "mon,,tue", "mon,"} {
		if _, err := ParseDays(in); !errors.Is(err, propstr.ErrUnrecognizedToken) {
			t.Errorf("ParseDays(%q): expected unrecognized token, got %v", in, err)
		}
	}
}

func TestDaySetAccessors(t *testing.T) {
	d, err := ParseDays("sun,wed")
	if err != nil {
		t.Fatalf("ParseDays error: %v", err)
	}
	if !d.Has(time.Sunday) || !d.Has(time.Wednesday) || d.Has(time.Monday) {
		t.Fatalf("unexpected membership for %08b", d)
	}
	if !cmp.Equal([]time.Weekday{time.Wednesday, time.Sunday}, d.Days()) {
		t.Fatalf("unexpected days %v", d.Days())
	}
	if got := d.Format(); got != "wed,sun" {
		t.Fatalf("expected canonical order, got %q", got)
	}
	if got := DaySet(0).Add(time.Friday).Render(); got != "Friday" {
		t.Fatalf("unexpected render %q", got)
	}
	if everyDay.Format() != "mon,tue,wed,thu,fri,sat,sun" {
		t.Fatalf("unexpected every day format %q", everyDay.Format())
	}
}
