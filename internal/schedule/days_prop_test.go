package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPropertyDaySet(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 128
	props := gopter.NewProperties(params)

	genSet := gen.UInt8Range(0, uint8(everyDay)).Map(func(v uint8) DaySet { return DaySet(v) })

	props.Property("format then parse is identity", prop.ForAll(
		func(d DaySet) bool {
			got, err := ParseDays(d.Format())
			return err == nil && got == d
		},
		genSet,
	))

	props.Property("expanding the rendering gives back the set", prop.ForAll(
		func(d DaySet) bool {
			return expand(d.Render()) == d
		},
		genSet,
	))

	props.Property("ranges only cover three or more days", prop.ForAll(
		func(d DaySet) bool {
			for _, part := range strings.Split(d.Render(), ", ") {
				first, last, ok := strings.Cut(part, "-")
				if ok && index(dayByName(last))-index(dayByName(first)) < 2 {
					return false
				}
			}
			return true
		},
		genSet,
	))

	props.TestingRun(t)
}

func dayByName(name string) time.Weekday {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == name {
			return wd
		}
	}
	return -1
}

func expand(rendered string) DaySet {
	var d DaySet
	if rendered == "" {
		return d
	}
	for _, part := range strings.Split(rendered, ", ") {
		first, last, ok := strings.Cut(part, "-")
		if !ok {
			last = first
		}
		for i := index(dayByName(first)); i <= index(dayByName(last)); i++ {
			d = d.Add(weekday(i))
		}
	}
	return d
}
