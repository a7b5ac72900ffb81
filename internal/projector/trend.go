package projector

import (
	"sort"
	"strconv"

	"github.com/sells-group/housing-dashboard/internal/feature"
)

// Trend is the all-renters burden share at threshold by ascending year.
// Years without a value at threshold are omitted.
func Trend(rows []feature.BurdenRow, threshold int) Series {
	var agg []feature.BurdenRow
	for _, r := range rows {
		if r.IsAggregate() && r.Value(threshold) != nil {
			agg = append(agg, r)
		}
	}
	sort.Slice(agg, func(i, j int) bool { return agg[i].Year < agg[j].Year })

	points := make([]Point, 0, len(agg))
	for _, r := range agg {
		points = append(points, Point{Category: strconv.Itoa(r.Year), Value: *r.Value(threshold)})
	}
	return Series{Label: trendLabel(threshold), Points: points}
}

func trendLabel(threshold int) string {
	return "Renters paying " + strconv.Itoa(threshold) + "%+ of income"
}

// TrendChart is the trend chart for threshold.
func TrendChart(store *feature.Store, threshold int) []Series {
	return []Series{Trend(store.Burden.All(), threshold)}
}
