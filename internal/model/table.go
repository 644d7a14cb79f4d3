package model

import (
	"errors"
	"fmt"
)

var ErrUnordered = errors.New("model: records must be strictly ascending by year")

// Table is an immutable, year-ascending sequence of complete records.
// The zero value is an empty table.
type Table struct {
	records []Record
}

func NewTable(records []Record) (Table, error) {
	copied := make([]Record, len(records))
	copy(copied, records)
	for i := 1; i < len(copied); i++ {
		if copied[i].Year <= copied[i-1].Year {
			return Table{}, fmt.Errorf("%w: year %d follows %d", ErrUnordered, copied[i].Year, copied[i-1].Year)
		}
	}
	return Table{records: copied}, nil
}

func (t Table) Len() int {
	return len(t.records)
}

func (t Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy; callers may modify it freely.
func (t Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func (t Table) FirstYear() (int, bool) {
	if len(t.records) == 0 {
		return 0, false
	}
	return t.records[0].Year, true
}

func (t Table) LastYear() (int, bool) {
	if len(t.records) == 0 {
		return 0, false
	}
	return t.records[len(t.records)-1].Year, true
}

func (t Table) Years() []int {
	years := make([]int, len(t.records))
	for i, record := range t.records {
		years[i] = record.Year
	}
	return years
}

func (t Table) Series(metric Metric) []float64 {
	values := make([]float64, len(t.records))
	for i, record := range t.records {
		values[i] = record.Value(metric)
	}
	return values
}
