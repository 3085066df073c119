package conflicts

import (
	"sort"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// entry is a shift with its resolved interval
type entry struct {
	shift     model.Shift
	interval  timeutil.Interval
	date      time.Time
	night     bool // explicit night type, or a start in the night window
	candidate bool
}

// timeline is a guard's schedule plus the candidate shift, sorted by start
type timeline struct {
	candidate entry
	entries   []entry
}

// buildTimeline resolves the candidate and the guard's existing schedule into intervals.
// Schedule entries with the candidate's id, and cancelled or rejected shifts, are skipped.
func buildTimeline(candidate model.Shift, schedule []model.Shift) (*timeline, error) {
	c, err := newEntry(candidate)
	if err != nil {
		return nil, err
	}
	c.candidate = true

	entries := []entry{c}
	for _, shift := range schedule {
		if (candidate.ID != "" && shift.ID == candidate.ID) || shift.IsInactive() {
			continue
		}
		e, err := newEntry(shift)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].interval.Start.Before(entries[j].interval.Start)
	})

	return &timeline{candidate: c, entries: entries}, nil
}

func newEntry(shift model.Shift) (entry, error) {
	interval, err := timeutil.ShiftInterval(shift)
	if err != nil {
		return entry{}, err
	}
	night, err := timeutil.IsNightShift(shift)
	if err != nil {
		return entry{}, err
	}
	return entry{
		shift:    shift,
		interval: interval,
		date:     timeutil.StartOfDay(interval.Start),
		night:    night,
	}, nil
}

// hoursOn sums the hours of every entry dated on the given day
func (t *timeline) hoursOn(day time.Time) float64 {
	total := 0.0
	for _, e := range t.entries {
		if e.date.Equal(day) {
			total += e.interval.Hours()
		}
	}
	return total
}

// hoursBetween sums the hours of every entry dated within [from, to)
func (t *timeline) hoursBetween(from, to time.Time) float64 {
	total := 0.0
	for _, e := range t.entries {
		if !e.date.Before(from) && e.date.Before(to) {
			total += e.interval.Hours()
		}
	}
	return total
}

// others returns every entry except the candidate
func (t *timeline) others() []entry {
	result := make([]entry, 0, len(t.entries)-1)
	for _, e := range t.entries {
		if e.candidate {
			continue
		}
		result = append(result, e)
	}
	return result
}

// workedDates returns the set of calendar dates with at least one entry
func (t *timeline) workedDates() map[time.Time]bool {
	dates := make(map[time.Time]bool, len(t.entries))
	for _, e := range t.entries {
		dates[e.date] = true
	}
	return dates
}
