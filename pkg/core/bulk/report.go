package bulk

import (
	"math"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/timeutil"
)

// UnknownSite is the BySite key for shifts with no site
const UnknownSite = "unknown"

// Report aggregates the shifts dated From..To inclusive
type Report struct {
	From string
	To   string

	TotalShifts int
	TotalHours  float64

	// AssignedShifts counts active shifts with a guard
	AssignedShifts int

	ByStatus map[model.ShiftStatus]int
	BySite   map[string]int
	ByGuard  map[string]int

	// FillRate is the percentage of active (not cancelled or rejected) shifts with a guard
	FillRate float64
}

// GenerateReport aggregates shifts by status, site and guard over the date range
func GenerateReport(shifts []model.Shift, from, to string) (*Report, error) {
	window, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	report := &Report{
		From:     from,
		To:       to,
		ByStatus: make(map[model.ShiftStatus]int),
		BySite:   make(map[string]int),
		ByGuard:  make(map[string]int),
	}
	active := 0

	for _, shift := range shifts {
		inRange, err := window.containsShift(shift)
		if err != nil {
			return nil, err
		}
		if !inRange {
			continue
		}

		hours, err := timeutil.ShiftHours(shift)
		if err != nil {
			return nil, err
		}

		report.TotalShifts++
		report.TotalHours += hours
		report.ByStatus[shift.Status]++

		site := shift.SiteID
		if site == "" {
			site = UnknownSite
		}
		report.BySite[site]++

		if shift.IsAssigned() {
			report.ByGuard[shift.GuardID]++
		}

		if shift.IsInactive() {
			continue
		}
		active++
		if shift.IsAssigned() {
			report.AssignedShifts++
		}
	}

	report.TotalHours = math.Round(report.TotalHours*100) / 100
	if active > 0 {
		report.FillRate = math.Round(float64(report.AssignedShifts)/float64(active)*1000) / 10
	}

	return report, nil
}
