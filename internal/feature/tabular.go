package feature

import (
	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

// BurdenRowsFromTable maps a demographic table (YEAR, TENURE, RACE, AGE,
// BURDEN_30, BURDEN_50) onto burden rows. Missing TENURE means Renter and
// missing RACE or AGE means All. Rows without a valid YEAR are skipped.
func BurdenRowsFromTable(t *fetcher.Table) []BurdenRow {
	recs := t.Records()
	rows := make([]BurdenRow, 0, len(recs))
	var skipped int
	for _, rec := range recs {
		year, ok := parseYear(rec["YEAR"])
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, BurdenRow{
			BurdenKey: BurdenKey{
				Year:   year,
				Tenure: orDefault(rec["TENURE"], TenureRenter),
				Race:   orDefault(rec["RACE"], AllCategory),
				Age:    orDefault(rec["AGE"], AllCategory),
			},
			Burden30: parseNum(rec["BURDEN_30"]),
			Burden50: parseNum(rec["BURDEN_50"]),
		})
	}
	if skipped > 0 {
		zap.L().Warn("feature: skipped burden rows without year", zap.Int("skipped", skipped))
	}
	return rows
}

// IncomeRowsFromTable maps an income table (YEAR, BRACKET, SHARE) onto
// income rows. Rows without a year or bracket are skipped.
func IncomeRowsFromTable(t *fetcher.Table) []IncomeRow {
	recs := t.Records()
	rows := make([]IncomeRow, 0, len(recs))
	var skipped int
	for _, rec := range recs {
		year, ok := parseYear(rec["YEAR"])
		if !ok || rec["BRACKET"] == "" {
			skipped++
			continue
		}
		rows = append(rows, IncomeRow{
			IncomeKey: IncomeKey{Year: year, Bracket: rec["BRACKET"]},
			Share:     parseNum(rec["SHARE"]),
		})
	}
	if skipped > 0 {
		zap.L().Warn("feature: skipped income rows without year or bracket", zap.Int("skipped", skipped))
	}
	return rows
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
