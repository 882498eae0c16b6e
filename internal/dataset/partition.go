package dataset

import (
	"fmt"
	"sort"
)

// Partition is the subset of a dataset sharing one grouping value.
type Partition struct {
	Key    string
	Header Row
	Rows   []Row
}

// Values returns the partition as a write-ready range, header first.
func (p Partition) Values() [][]any {
	out := make([][]any, 0, len(p.Rows)+1)
	out = append(out, p.Header)
	for _, r := range p.Rows {
		out = append(out, r)
	}
	return out
}

// Split groups the data rows by the value of column col. Keys are the
// distinct non-empty values sorted ascending. Rows whose group value is
// empty belong to no partition and are dropped; they have no tab to go to.
// A row that does not reach col fails the whole call.
func Split(d *Dataset, col int) ([]Partition, error) {
	groups := make(map[string][]Row)
	for i, row := range d.Rows {
		key, err := row.Key(col)
		if err != nil {
			// +2: 1-based, after the header
			return nil, fmt.Errorf("%s row %d: %w", d.Schema.Tag(), i+2, err)
		}
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row.Clone(0))
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]Partition, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, Partition{
			Key:    k,
			Header: d.Header,
			Rows:   groups[k],
		})
	}
	return parts, nil
}

// StartFrom drops the partitions sorted before key. An empty key selects
// everything. When key matches no partition nothing is selected and matched
// is false, which lets a caller resume a partial run but also means a typo
// silently selects nothing; callers should warn.
func StartFrom(parts []Partition, key string) (selected []Partition, skipped []string, matched bool) {
	if key == "" {
		return parts, nil, true
	}

	for i, p := range parts {
		if p.Key == key {
			return parts[i:], skipped, true
		}
		skipped = append(skipped, p.Key)
	}
	return nil, skipped, false
}
