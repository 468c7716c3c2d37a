package propstr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestParseKeyValuePairs(t *testing.T) {
	got, err := Parse("a=1,b=2", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := map[string]string{"a": "1", "b": "2"}
	if !cmp.Equal(want, got) {
		t.Fatalf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func TestParseEmptyInput(t *testing.T) {
	got, err := Parse("", "type")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestParseDefaultKey(t *testing.T) {
	got, err := Parse("foo,key=val", "type")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := map[string]string{"type": "foo", "key": "val"}
	if !cmp.Equal(want, got) {
		t.Fatalf("unexpected result:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}
}

func TestParseValueContainsEquals(t *testing.T) {
	got, err := Parse("args=-foo=bar", "")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got["args"] != "-foo=bar" {
		t.Fatalf("expected value split on first '=', got %q", got["args"])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		defaultKey string
		want       error
	}{
		{name: "duplicate key", raw: "a=1,a=2", want: ErrDuplicateKey},
		{name: "duplicate default", raw: "foo,bar", defaultKey: "type", want: ErrDuplicateDefaultKey},
		{name: "default after explicit", raw: "type=foo,bar", defaultKey: "type", want: ErrDuplicateDefaultKey},
		{name: "bare without default", raw: "a=1,foo", want: ErrMalformedSegment},
		{name: "trailing comma", raw: "a=1,", want: ErrMalformedSegment},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(test.raw, test.defaultKey)
			if !errors.Is(err, test.want) {
				t.Fatalf("expected %v, got %v", test.want, err)
			}
			if got != nil {
				t.Fatalf("expected no partial result, got %v", got)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestPrintSortsAndLeadsWithDefault(t *testing.T) {
	data := map[string]string{
		"size":  "32G",
		"file":  "local:vm-100-disk-0",
		"cache": "none",
		"empty": "",
	}
	got := Print(data, "file")
	want := "local:vm-100-disk-0,cache=none,size=32G"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPrintSortsByKey(t *testing.T) {
	got := Print(map[string]string{"a-b": "1", "a": "2"}, "")
	if got != "a=2,a-b=1" {
		t.Fatalf("expected keys sorted as keys, got %q", got)
	}
}

func TestPrintWithoutDefaultKey(t *testing.T) {
	got := Print(map[string]string{"b": "2", "a": "1"}, "")
	if got != "a=1,b=2" {
		t.Fatalf("expected sorted output, got %q", got)
	}
	if got := Print(map[string]string{}, "type"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestParseBoolean(t *testing.T) {
	tests := []struct {
		value    *string
		fallback *bool
		want     *bool
	}{
		{value: ptr("On"), want: ptr(true)},
		{value: ptr("1"), want: ptr(true)},
		{value: ptr("YES"), want: ptr(true)},
		{value: ptr("true"), want: ptr(true)},
		{value: ptr("No"), want: ptr(false)},
		{value: ptr("0"), want: ptr(false)},
		{value: ptr(""), fallback: ptr(true), want: ptr(false)},
		{value: nil, fallback: ptr(true), want: ptr(true)},
		{value: nil, want: nil},
	}

	for _, test := range tests {
		got := ParseBoolean(test.value, test.fallback)
		if !cmp.Equal(test.want, got) {
			t.Errorf("ParseBoolean(%v, %v): %s", deref(test.value), deref(test.fallback), cmp.Diff(test.want, got))
		}
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestProperties(t *testing.T) {
	var p Properties
	p.Set("media", "cdrom")
	p.Set("size", "4M")
	p.Set("media", "disk")

	if v, ok := p.Get("media"); !ok || v != "disk" {
		t.Fatalf("expected media=disk, got %q (ok=%v)", v, ok)
	}
	if got := p.String(); got != ",media=disk,size=4M" {
		t.Fatalf("expected insertion order preserved, got %q", got)
	}
	p.Delete("media")
	if p.Has("media") {
		t.Fatalf("expected media deleted")
	}
	if want := (Properties{{Key: "size", Value: "4M"}}); !cmp.Equal(want, p) {
		t.Fatalf("unexpected properties:\n%s", cmp.Diff(want, p))
	}
}
