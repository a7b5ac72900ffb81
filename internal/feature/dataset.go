package feature

import "github.com/rotisserie/eris"

// ErrDuplicateID is returned when two rows of one dataset share an id.
var ErrDuplicateID = eris.New("feature: duplicate id")

// Dataset is an ordered, immutable collection of rows indexed by id.
type Dataset[K comparable, T any] struct {
	name  string
	rows  []T
	index map[K]int
}

// NewDataset indexes rows by key. Duplicate keys fail with ErrDuplicateID.
func NewDataset[K comparable, T any](name string, rows []T, key func(T) K) (*Dataset[K, T], error) {
	index := make(map[K]int, len(rows))
	for i, r := range rows {
		k := key(r)
		if _, dup := index[k]; dup {
			return nil, eris.Wrapf(ErrDuplicateID, "%s: %v", name, k)
		}
		index[k] = i
	}
	return &Dataset[K, T]{name: name, rows: rows, index: index}, nil
}

// Name returns the dataset name.
func (d *Dataset[K, T]) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset[K, T]) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Get returns the row with key k.
func (d *Dataset[K, T]) Get(k K) (T, bool) {
	var zero T
	if d == nil {
		return zero, false
	}
	i, ok := d.index[k]
	if !ok {
		return zero, false
	}
	return d.rows[i], true
}

// All returns the rows in load order. Callers must not modify the slice.
func (d *Dataset[K, T]) All() []T {
	if d == nil {
		return nil
	}
	return d.rows
}
