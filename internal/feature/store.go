package feature

// Store is the loaded, read-only set of dashboard datasets. It is safe for
// concurrent use once built.
type Store struct {
	Tracts *Dataset[string, Tract]
	Zones  *Dataset[string, Zone]
	Burden *Dataset[BurdenKey, BurdenRow]
	Income *Dataset[IncomeKey, IncomeRow]

	minYear, maxYear int
}

// NewStore indexes the given rows into a Store.
func NewStore(tracts []Tract, zones []Zone, burden []BurdenRow, income []IncomeRow) (*Store, error) {
	td, err := tractDataset(tracts)
	if err != nil {
		return nil, err
	}
	zd, err := zoneDataset(zones)
	if err != nil {
		return nil, err
	}
	bd, err := burdenDataset(burden)
	if err != nil {
		return nil, err
	}
	id, err := incomeDataset(income)
	if err != nil {
		return nil, err
	}
	return assemble(td, zd, bd, id), nil
}

func tractDataset(rows []Tract) (*Dataset[string, Tract], error) {
	return NewDataset("tracts", rows, func(t Tract) string { return t.GEOID })
}

func zoneDataset(rows []Zone) (*Dataset[string, Zone], error) {
	return NewDataset("zones", rows, func(z Zone) string { return z.ID })
}

func burdenDataset(rows []BurdenRow) (*Dataset[BurdenKey, BurdenRow], error) {
	return NewDataset("burden", rows, func(r BurdenRow) BurdenKey { return r.BurdenKey })
}

func incomeDataset(rows []IncomeRow) (*Dataset[IncomeKey, IncomeRow], error) {
	return NewDataset("income", rows, func(r IncomeRow) IncomeKey { return r.IncomeKey })
}

func assemble(
	tracts *Dataset[string, Tract],
	zones *Dataset[string, Zone],
	burden *Dataset[BurdenKey, BurdenRow],
	income *Dataset[IncomeKey, IncomeRow],
) *Store {
	s := &Store{Tracts: tracts, Zones: zones, Burden: burden, Income: income}

	first := true
	observe := func(y int) {
		if first || y < s.minYear {
			s.minYear = y
		}
		if first || y > s.maxYear {
			s.maxYear = y
		}
		first = false
	}
	for _, r := range burden.All() {
		observe(r.Year)
	}
	for _, r := range income.All() {
		observe(r.Year)
	}
	return s
}

// YearRange returns the year domain of the time series datasets. Both are
// zero when no rows were loaded.
func (s *Store) YearRange() (minYear, maxYear int) {
	return s.minYear, s.maxYear
}

// Tract looks up a tract by GEOID.
func (s *Store) Tract(id string) (Tract, bool) { return s.Tracts.Get(id) }

// Zone looks up a zone by id.
func (s *Store) Zone(id string) (Zone, bool) { return s.Zones.Get(id) }

// Name returns the display name of the referenced feature.
func (s *Store) Name(ref Ref) (string, bool) {
	switch ref.Kind {
	case KindTract:
		if t, ok := s.Tract(ref.ID); ok {
			return t.Name, true
		}
	case KindZone:
		if z, ok := s.Zone(ref.ID); ok {
			return z.Name, true
		}
	}
	return "", false
}
