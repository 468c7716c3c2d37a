// Package version compares dotted numeric version strings such as the ones
// reported by ceph daemons and encoded in QEMU machine types.
package version

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

const formatVersion = "version"

// Version is an ordered list of non-negative components, most significant
// first.
type Version []int

// Parse splits a dotted version such as "17.2.6" into its components.
func Parse(s string) (Version, error) {
	if s == "" {
		return nil, propstr.Errorf(formatVersion, propstr.ErrMissingField, "")
	}
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p[0] == '+' {
			return nil, propstr.Errorf(formatVersion, propstr.ErrPatternMismatch, p)
		}
		v = append(v, n)
	}
	return v, nil
}

// String renders v in dotted form.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than b.
// Components are compared pairwise; when one version is a strict prefix of
// the other the longer one is greater, so 7.1 < 7.1.0.
func Compare(a, b Version) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// CompareStrings parses a and b and compares them with Compare.
func CompareStrings(a, b string) (int, error) {
	if a == b {
		return 0, nil
	}
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(av, bv), nil
}

// AtLeast reports whether v is greater than or equal to min, comparing
// component by component from the left, so 8.0 is at least 7.1. Missing
// trailing components on either side count as zero, so 7.1 is at least
// 7.1.0 even though Compare orders it first.
func AtLeast(v, min Version) bool {
	n := len(v)
	if len(min) > n {
		n = len(min)
	}
	for i := 0; i < n; i++ {
		a, b := at(v, i), at(min, i)
		if a != b {
			return a > b
		}
	}
	return true
}

func at(v Version, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

var cephVersion = regexp.MustCompile(`version (\d+(\.\d+)*)`)

// FromCeph extracts the version of a ceph service. The short form is used
// when set; otherwise the number following "version " in the long banner
// (e.g. "ceph version 17.2.6 (...) quincy (stable)") is returned.
func FromCeph(short, long string) (string, bool) {
	if short != "" {
		return short, true
	}
	if m := cephVersion.FindStringSubmatch(long); m != nil {
		return m[1], true
	}
	return "", false
}
