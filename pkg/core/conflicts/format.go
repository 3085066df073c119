package conflicts

import (
	"math"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

func siteLabel(shift model.Shift) string {
	if shift.SiteName != "" {
		return shift.SiteName
	}
	if shift.SiteID != "" {
		return shift.SiteID
	}
	return "another site"
}

func guardLabel(guard model.Guard) string {
	if guard.Name != "" {
		return guard.Name
	}
	return "Guard " + guard.ID
}
