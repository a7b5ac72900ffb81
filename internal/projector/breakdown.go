package projector

import (
	"strconv"

	"github.com/sells-group/housing-dashboard/internal/feature"
)

// RaceCategories are the fixed race categories of the breakdown chart.
var RaceCategories = []string{"White", "Black", "Asian", "Hispanic or Latino", "Other"}

// IncomeBrackets are the fixed income brackets of the breakdown chart.
var IncomeBrackets = []string{"<$25k", "$25k-$50k", "$50k-$75k", "$75k-$100k", "$100k+"}

// Breakdown series labels.
const (
	raceLabel   = "By race"
	incomeLabel = "By income"
)

// RaceBreakdown is the renter burden share at threshold per race category
// for year. Categories without data are 0.
func RaceBreakdown(burden *feature.Dataset[feature.BurdenKey, feature.BurdenRow], year, threshold int) Series {
	points := make([]Point, 0, len(RaceCategories))
	for _, race := range RaceCategories {
		var v float64
		row, ok := burden.Get(feature.BurdenKey{
			Year: year, Tenure: feature.TenureRenter, Race: race, Age: feature.AllCategory,
		})
		if ok && row.Value(threshold) != nil {
			v = *row.Value(threshold)
		}
		points = append(points, Point{Category: race, Value: v})
	}
	return Series{Label: raceLabel + " (" + strconv.Itoa(threshold) + "%+)", Points: points}
}

// IncomeBreakdown is the share of renter households per income bracket for
// year. Brackets without data are 0.
func IncomeBreakdown(income *feature.Dataset[feature.IncomeKey, feature.IncomeRow], year int) Series {
	points := make([]Point, 0, len(IncomeBrackets))
	for _, bracket := range IncomeBrackets {
		var v float64
		row, ok := income.Get(feature.IncomeKey{Year: year, Bracket: bracket})
		if ok && row.Share != nil {
			v = *row.Share
		}
		points = append(points, Point{Category: bracket, Value: v})
	}
	return Series{Label: incomeLabel, Points: points}
}

// BreakdownChart holds the race and income breakdowns for year.
func BreakdownChart(store *feature.Store, year, threshold int) []Series {
	return []Series{
		RaceBreakdown(store.Burden, year, threshold),
		IncomeBreakdown(store.Income, year),
	}
}
