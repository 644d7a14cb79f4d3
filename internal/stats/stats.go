// Package stats derives headline figures from a trade table.
package stats

import (
	"errors"

	"tradeboard/internal/model"
)

var ErrEmptyDataset = errors.New("stats: empty dataset")

// Summarize computes the maxima of each metric, ties going to the earliest
// year, and the mean of the positive trade balances. The mean is 0 when no
// year has a surplus.
func Summarize(table model.Table) (model.Summary, error) {
	if table.Len() == 0 {
		return model.Summary{}, ErrEmptyDataset
	}

	first := table.At(0)
	summary := model.Summary{
		MaxBalance:     first.TradeBalance,
		MaxBalanceYear: first.Year,
		MaxExports:     first.Exports,
		MaxExportsYear: first.Year,
		MaxImports:     first.Imports,
		MaxImportsYear: first.Year,
	}

	var positiveSum float64
	var positiveCount int
	for i := 0; i < table.Len(); i++ {
		record := table.At(i)
		if record.TradeBalance > summary.MaxBalance {
			summary.MaxBalance = record.TradeBalance
			summary.MaxBalanceYear = record.Year
		}
		if record.Exports > summary.MaxExports {
			summary.MaxExports = record.Exports
			summary.MaxExportsYear = record.Year
		}
		if record.Imports > summary.MaxImports {
			summary.MaxImports = record.Imports
			summary.MaxImportsYear = record.Year
		}
		if record.TradeBalance > 0 {
			positiveSum += record.TradeBalance
			positiveCount++
		}
	}
	if positiveCount > 0 {
		summary.AvgPositiveBalance = positiveSum / float64(positiveCount)
	}
	return summary, nil
}

// Insights counts surplus and deficit years and totals each side. A zero
// balance counts toward neither.
func Insights(table model.Table) (model.Insights, error) {
	if table.Len() == 0 {
		return model.Insights{}, ErrEmptyDataset
	}

	var insights model.Insights
	for i := 0; i < table.Len(); i++ {
		balance := table.At(i).TradeBalance
		switch {
		case balance > 0:
			insights.SurplusYears++
			insights.SurplusTotal += balance
		case balance < 0:
			insights.DeficitYears++
			insights.DeficitTotal += -balance
		}
	}
	return insights, nil
}
