// Package schedule renders the weekday selection of a backup job.
package schedule

import (
	"strings"
	"time"

	"github.com/doridoridoriand/pvecfg/internal/propstr"
)

const formatDays = "dow"

// DaySet is a set of weekdays. Bit 0 is Monday and bit 6 is Sunday.
type DaySet uint8

var dayTokens = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// index returns the Monday-first position of wd.
func index(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func weekday(i int) time.Weekday {
	return time.Weekday((i + 1) % 7)
}

// Add selects wd.
func (d DaySet) Add(wd time.Weekday) DaySet {
	return d | 1<<index(wd)
}

// Has reports whether wd is selected.
func (d DaySet) Has(wd time.Weekday) bool {
	return d&(1<<index(wd)) != 0
}

// Days returns the selected weekdays starting with Monday.
func (d DaySet) Days() []time.Weekday {
	var res []time.Weekday
	for i := 0; i < 7; i++ {
		if d.Has(weekday(i)) {
			res = append(res, weekday(i))
		}
	}
	return res
}

// ParseDays parses a comma separated list of day tokens such as
// "mon,tue,fri". Tokens are treated as a set; order and repetition do not
// matter.
func ParseDays(val string) (DaySet, error) {
	var d DaySet
	if val == "" {
		return d, nil
	}
	for _, tok := range strings.Split(val, ",") {
		i := tokenIndex(tok)
		if i < 0 {
			return 0, propstr.Errorf(formatDays, propstr.ErrUnrecognizedToken, tok)
		}
		d = d.Add(weekday(i))
	}
	return d, nil
}

func tokenIndex(tok string) int {
	for i, t := range dayTokens {
		if t == tok {
			return i
		}
	}
	return -1
}

// Format returns the canonical token list of d, the inverse of ParseDays.
func (d DaySet) Format() string {
	var parts []string
	for i, t := range dayTokens {
		if d.Has(weekday(i)) {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ",")
}

// Render describes d for humans. Runs of three or more consecutive days
// collapse into a range ("Monday-Wednesday"); shorter runs list each day.
// Runs do not wrap from Sunday to Monday.
func (d DaySet) Render() string {
	var parts []string
	for i := 0; i < 7; {
		if !d.Has(weekday(i)) {
			i++
			continue
		}
		j := i
		for j+1 < 7 && d.Has(weekday(j+1)) {
			j++
		}
		switch n := j - i + 1; {
		case n >= 3:
			parts = append(parts, weekday(i).String()+"-"+weekday(j).String())
		default:
			for k := i; k <= j; k++ {
				parts = append(parts, weekday(k).String())
			}
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

// RenderDaysOfWeek parses val with ParseDays and renders the result.
func RenderDaysOfWeek(val string) (string, error) {
	d, err := ParseDays(val)
	if err != nil {
		return "", err
	}
	return d.Render(), nil
}
