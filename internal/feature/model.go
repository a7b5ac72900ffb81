// Package feature holds the dashboard's immutable datasets: census tracts
// with rent and burden attributes, MHA zoning overlay zones, and the
// demographic burden and income time series.
package feature

import (
	"github.com/twpayne/go-geom"
)

// Kind identifies which geo dataset a feature belongs to.
type Kind string

// Geo feature kinds.
const (
	KindTract Kind = "tract"
	KindZone  Kind = "zone"
)

// Ref identifies one geo feature across adapters and state.
type Ref struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
}

// GRAPIBucket is one gross-rent-as-percentage-of-income bucket.
type GRAPIBucket string

// GRAPI buckets in display order.
const (
	GRAPIUnder20 GRAPIBucket = "GRAPI_LT20"
	GRAPI20to29  GRAPIBucket = "GRAPI_20_29"
	GRAPI30to49  GRAPIBucket = "GRAPI_30_49"
	GRAPI50Plus  GRAPIBucket = "GRAPI_50_PLUS"
)

// GRAPIBuckets lists every bucket in display order.
var GRAPIBuckets = []GRAPIBucket{GRAPIUnder20, GRAPI20to29, GRAPI30to49, GRAPI50Plus}

// Tract is a census tract from the rent/burden choropleth source.
// Numeric attributes are nil when the source omits them.
type Tract struct {
	GEOID        string
	Name         string
	Neighborhood string
	MedianRent   *float64
	Burden30     *float64
	Burden50     *float64
	// RentSeries is the embedded JSON array of {"year","value"} entries.
	RentSeries string
	GRAPI      map[GRAPIBucket]float64
	Geometry   geom.T
}

// Burden returns the share of renter households paying at least threshold
// percent of income on rent.
func (t Tract) Burden(threshold int) *float64 {
	if threshold == 30 {
		return t.Burden30
	}
	return t.Burden50
}

// Ref returns the tract's feature reference.
func (t Tract) Ref() Ref { return Ref{Kind: KindTract, ID: t.GEOID} }

// Zone is an MHA zoning overlay polygon.
type Zone struct {
	ID       string
	Name     string
	Tier     string
	Category string
	Geometry geom.T
}

// Ref returns the zone's feature reference.
func (z Zone) Ref() Ref { return Ref{Kind: KindZone, ID: z.ID} }

// Aggregate category values used by the demographic rows.
const (
	AllCategory  = "All"
	TenureRenter = "Renter"
)

// BurdenKey is the composite id of a demographic burden row.
type BurdenKey struct {
	Year   int
	Tenure string
	Race   string
	Age    string
}

// BurdenRow is one year × tenure × race × age burden observation.
type BurdenRow struct {
	BurdenKey
	Burden30 *float64
	Burden50 *float64
}

// Value returns the burden share at threshold.
func (r BurdenRow) Value(threshold int) *float64 {
	if threshold == 30 {
		return r.Burden30
	}
	return r.Burden50
}

// IsAggregate reports whether the row is the all-renters total for its year.
func (r BurdenRow) IsAggregate() bool {
	return r.Tenure == TenureRenter && r.Race == AllCategory && r.Age == AllCategory
}

// IncomeKey is the composite id of an income distribution row.
type IncomeKey struct {
	Year    int
	Bracket string
}

// IncomeRow is the share of renter households in one income bracket.
type IncomeRow struct {
	IncomeKey
	Share *float64
}
