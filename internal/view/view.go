// Package view restricts a trade table to a year interval and a set of
// metrics for charting.
package view

import (
	"errors"
	"fmt"
	"strings"

	"tradeboard/internal/model"
)

var (
	ErrInvalidRange  = errors.New("view: invalid year range")
	ErrUnknownMetric = model.ErrUnknownMetric
)

// Filter returns the records whose year is within r, inclusive, keeping only
// the requested metrics. An empty metric set yields year-only rows.
func Filter(table model.Table, r model.YearRange, metrics []model.Metric) ([]model.Row, error) {
	if r.Min > r.Max {
		return nil, fmt.Errorf("%w: min %d is after max %d", ErrInvalidRange, r.Min, r.Max)
	}

	want := make(map[model.Metric]bool, len(metrics))
	for _, metric := range metrics {
		switch metric {
		case model.MetricExports, model.MetricImports, model.MetricTradeBalance:
			want[metric] = true
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
		}
	}

	rows := make([]model.Row, 0)
	for i := 0; i < table.Len(); i++ {
		record := table.At(i)
		if !r.Contains(record.Year) {
			continue
		}
		row := model.Row{Year: record.Year}
		if want[model.MetricExports] {
			v := record.Exports
			row.Exports = &v
		}
		if want[model.MetricImports] {
			v := record.Imports
			row.Imports = &v
		}
		if want[model.MetricTradeBalance] {
			v := record.TradeBalance
			row.TradeBalance = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Subset is Filter with every metric kept, returned as a table for the
// chart renderers.
func Subset(table model.Table, r model.YearRange) (model.Table, error) {
	rows, err := Filter(table, r, model.AllMetrics())
	if err != nil {
		return model.Table{}, err
	}
	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = model.Record{
			Year:         row.Year,
			Exports:      *row.Exports,
			Imports:      *row.Imports,
			TradeBalance: *row.TradeBalance,
		}
	}
	return model.NewTable(records)
}

// ParseMetrics accepts metric names or aliases. Repeated names collapse to
// one and the result keeps first-seen order.
func ParseMetrics(values []string) ([]model.Metric, error) {
	seen := make(map[model.Metric]struct{}, len(values))
	metrics := make([]model.Metric, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		metric, err := model.ParseMetric(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[metric]; ok {
			continue
		}
		seen[metric] = struct{}{}
		metrics = append(metrics, metric)
	}
	return metrics, nil
}

func FullRange(table model.Table) model.YearRange {
	first, ok := table.FirstYear()
	if !ok {
		return model.YearRange{}
	}
	last, _ := table.LastYear()
	return model.YearRange{Min: first, Max: last}
}

// Clamp narrows r to the years the table covers. A range entirely outside
// the table is returned unchanged so Filter yields no rows.
func Clamp(r model.YearRange, table model.Table) model.YearRange {
	full := FullRange(table)
	if table.Len() == 0 || r.Max < full.Min || r.Min > full.Max {
		return r
	}
	if r.Min < full.Min {
		r.Min = full.Min
	}
	if r.Max > full.Max {
		r.Max = full.Max
	}
	return r
}
