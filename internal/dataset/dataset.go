// Package dataset turns aligned annual columns into a model.Table.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"tradeboard/internal/model"
)

var ErrSchema = errors.New("dataset: schema error")

// Columns holds position-aligned annual series. A nil entry marks a
// missing value.
type Columns struct {
	Years        []int
	Exports      []*float64
	Imports      []*float64
	TradeBalance []*float64
}

func (c Columns) Len() int {
	return len(c.Years)
}

// Append adds one aligned row.
func (c *Columns) Append(year int, exports, imports, balance *float64) {
	c.Years = append(c.Years, year)
	c.Exports = append(c.Exports, exports)
	c.Imports = append(c.Imports, imports)
	c.TradeBalance = append(c.TradeBalance, balance)
}

// Load keeps only the years where exports, imports and trade balance are
// all present; a NaN counts as missing and an infinite value is a schema
// error. Trade balance is taken as recorded, never recomputed.
func Load(columns Columns) (model.Table, error) {
	n := len(columns.Years)
	if len(columns.Exports) != n || len(columns.Imports) != n || len(columns.TradeBalance) != n {
		return model.Table{}, fmt.Errorf("%w: column lengths differ (years=%d exports=%d imports=%d trade_balance=%d)",
			ErrSchema, n, len(columns.Exports), len(columns.Imports), len(columns.TradeBalance))
	}

	records := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && columns.Years[i] <= columns.Years[i-1] {
			return model.Table{}, fmt.Errorf("%w: year %d at row %d is not after %d", ErrSchema, columns.Years[i], i, columns.Years[i-1])
		}
		exports, imports, balance := columns.Exports[i], columns.Imports[i], columns.TradeBalance[i]
		if missing(exports) || missing(imports) || missing(balance) {
			continue
		}
		if math.IsInf(*exports, 0) || math.IsInf(*imports, 0) || math.IsInf(*balance, 0) {
			return model.Table{}, fmt.Errorf("%w: infinite value in year %d", ErrSchema, columns.Years[i])
		}
		records = append(records, model.Record{
			Year:         columns.Years[i],
			Exports:      *exports,
			Imports:      *imports,
			TradeBalance: *balance,
		})
	}

	table, err := model.NewTable(records)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return table, nil
}

func missing(v *float64) bool {
	return v == nil || math.IsNaN(*v)
}

// Value is a convenience for building Columns literals.
func Value(v float64) *float64 {
	return &v
}
