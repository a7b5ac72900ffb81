package projector

import (
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Stat labels.
const (
	rentStatLabel   = "Average median rent"
	burdenStatLabel = "Rent-burdened renter households"
	mhaStatLabel    = "Mandatory Housing Affordability"
	mhaStatValue    = "MHA zoning overlay"
	mhaStatSubLabel = "Tiers set affordable housing requirements for new development"
)

func noDataStat(label string) Stat {
	return Stat{Label: label, Value: NoData, SubLabel: "No tracts in view", NoData: true}
}

func inView(n int) string {
	if n == 1 {
		return "across 1 tract in view"
	}
	return "across " + formatCount(n) + " tracts in view"
}

// RentStat is the mean median rent over tracts with a positive rent.
// Zero and missing rents are excluded.
func RentStat(tracts []feature.Tract) Stat {
	var sum float64
	var n int
	for _, t := range tracts {
		if t.MedianRent == nil || *t.MedianRent <= 0 {
			continue
		}
		sum += *t.MedianRent
		n++
	}
	if n == 0 {
		return noDataStat(rentStatLabel)
	}
	mean := sum / float64(n)
	return Stat{Label: rentStatLabel, Value: formatRent(mean), SubLabel: inView(n), Number: &mean}
}

// BurdenStat is the mean burden share at threshold over tracts reporting one.
func BurdenStat(tracts []feature.Tract, threshold int) Stat {
	label := burdenStatLabel + " (" + formatCount(threshold) + "%+ of income)"
	var sum float64
	var n int
	for _, t := range tracts {
		v := t.Burden(threshold)
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return noDataStat(label)
	}
	mean := sum / float64(n)
	return Stat{Label: label, Value: formatPercent(mean), SubLabel: inView(n), Number: &mean}
}

// MHAStat is the static zoning overlay description.
func MHAStat() Stat {
	return Stat{Label: mhaStatLabel, Value: mhaStatValue, SubLabel: mhaStatSubLabel}
}

// StatFor computes the stat block for the state's active layer.
func StatFor(store *feature.Store, s selection.State) Stat {
	switch s.Layer {
	case selection.LayerBurden:
		return BurdenStat(VisibleTracts(store, s.Visible), s.Threshold)
	case selection.LayerMHA:
		return MHAStat()
	default:
		return RentStat(VisibleTracts(store, s.Visible))
	}
}

// VisibleTracts resolves the tract refs of visible against store. Unknown
// ids and non-tract refs are skipped.
func VisibleTracts(store *feature.Store, visible []feature.Ref) []feature.Tract {
	out := make([]feature.Tract, 0, len(visible))
	for _, ref := range visible {
		if ref.Kind != feature.KindTract {
			continue
		}
		if t, ok := store.Tract(ref.ID); ok {
			out = append(out, t)
		}
	}
	return out
}
