package projector

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/sells-group/housing-dashboard/internal/feature"
)

// Feature chart series labels.
const (
	rentHistoryLabel = "Median rent history"
	grapiLabel       = "Rent as % of income"
)

// GRAPILabels are the display categories of the GRAPI buckets.
var GRAPILabels = map[feature.GRAPIBucket]string{
	feature.GRAPIUnder20: "<20%",
	feature.GRAPI20to29:  "20-29%",
	feature.GRAPI30to49:  "30-49%",
	feature.GRAPI50Plus:  "50%+",
}

type seriesEntry struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// FeatureSeries parses the tract's embedded rent history, keeping positive
// values in ascending year order. A malformed series yields no points.
func FeatureSeries(t feature.Tract) Series {
	out := Series{Label: rentHistoryLabel, Points: []Point{}}
	if t.RentSeries == "" {
		return out
	}
	var entries []seriesEntry
	if err := json.Unmarshal([]byte(t.RentSeries), &entries); err != nil {
		return out
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Value != nil && *e.Value > 0 {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Year < kept[j].Year })
	for _, e := range kept {
		out.Points = append(out.Points, Point{Category: strconv.Itoa(e.Year), Value: *e.Value})
	}
	return out
}

// FeatureGRAPI is the tract's GRAPI distribution over the fixed buckets.
// Missing buckets are 0.
func FeatureGRAPI(t feature.Tract) Series {
	points := make([]Point, 0, len(feature.GRAPIBuckets))
	for _, b := range feature.GRAPIBuckets {
		points = append(points, Point{Category: GRAPILabels[b], Value: t.GRAPI[b]})
	}
	return Series{Label: grapiLabel, Points: points}
}

// FeatureChart is the selected tract's rent history and GRAPI breakdown.
// No selection, a zone selection or an unknown id yields the placeholder.
func FeatureChart(store *feature.Store, selected *feature.Ref) []Series {
	if selected == nil || selected.Kind != feature.KindTract {
		return PlaceholderSeries(ChartFeature)
	}
	t, ok := store.Tract(selected.ID)
	if !ok {
		return PlaceholderSeries(ChartFeature)
	}
	return []Series{FeatureSeries(t), FeatureGRAPI(t)}
}
