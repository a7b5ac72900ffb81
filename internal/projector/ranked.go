package projector

import (
	"sort"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Metric extracts the ranked value of a tract; nil means missing.
type Metric func(feature.Tract) *float64

// RentMetric is the tract's median rent. Zero rents count toward the
// neighborhood mean.
func RentMetric(t feature.Tract) *float64 { return t.MedianRent }

// BurdenMetric returns the burden share at threshold.
func BurdenMetric(threshold int) Metric {
	return func(t feature.Tract) *float64 { return t.Burden(threshold) }
}

// Ranked groups tracts by neighborhood, averages metric per group, drops
// groups with a non-positive mean and returns the top limit groups by
// descending mean. Ties order by neighborhood name.
func Ranked(label string, tracts []feature.Tract, metric Metric, limit int) Series {
	type group struct {
		sum float64
		n   int
	}
	groups := make(map[string]*group)
	for _, t := range tracts {
		if t.Neighborhood == "" {
			continue
		}
		v := metric(t)
		if v == nil {
			continue
		}
		g, ok := groups[t.Neighborhood]
		if !ok {
			g = &group{}
			groups[t.Neighborhood] = g
		}
		g.sum += *v
		g.n++
	}

	points := make([]Point, 0, len(groups))
	for name, g := range groups {
		mean := g.sum / float64(g.n)
		if mean <= 0 {
			continue
		}
		points = append(points, Point{Category: name, Value: mean})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Category < points[j].Category
	})
	if len(points) > limit {
		points = points[:limit]
	}
	return Series{Label: label, Points: points}
}

func rankedLabel(layer selection.Layer) string {
	if layer == selection.LayerBurden {
		return "Most burdened neighborhoods"
	}
	return "Highest rent neighborhoods"
}

// RankedChart is the ranked bar chart for the state. The MHA layer has no
// tract metric, so it yields the placeholder.
func RankedChart(store *feature.Store, s selection.State) []Series {
	var metric Metric
	switch s.Layer {
	case selection.LayerRent:
		metric = RentMetric
	case selection.LayerBurden:
		metric = BurdenMetric(s.Threshold)
	default:
		return PlaceholderSeries(ChartRanked)
	}
	return []Series{Ranked(rankedLabel(s.Layer), VisibleTracts(store, s.Visible), metric, RankedLimit)}
}
