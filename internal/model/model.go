package model

import (
	"errors"
	"fmt"
	"strings"
)

type Metric string

const (
	MetricExports      Metric = "exports"
	MetricImports      Metric = "imports"
	MetricTradeBalance Metric = "trade_balance"
)

var ErrUnknownMetric = errors.New("model: unknown metric")

func AllMetrics() []Metric {
	return []Metric{MetricExports, MetricImports, MetricTradeBalance}
}

func (m Metric) Label() string {
	switch m {
	case MetricExports:
		return "Exports"
	case MetricImports:
		return "Imports"
	case MetricTradeBalance:
		return "Trade Balance"
	default:
		return string(m)
	}
}

func ParseMetric(value string) (Metric, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "exports", "export":
		return MetricExports, nil
	case "imports", "import":
		return MetricImports, nil
	case "trade_balance", "balance", "tradebalance":
		return MetricTradeBalance, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, value)
	}
}

type Record struct {
	Year         int     `json:"year"`
	Exports      float64 `json:"exports"`
	Imports      float64 `json:"imports"`
	TradeBalance float64 `json:"trade_balance"`
}

func (r Record) Value(metric Metric) float64 {
	switch metric {
	case MetricExports:
		return r.Exports
	case MetricImports:
		return r.Imports
	case MetricTradeBalance:
		return r.TradeBalance
	default:
		return 0
	}
}

// Row is a filtered view of a Record. A nil field was not requested.
type Row struct {
	Year         int      `json:"year"`
	Exports      *float64 `json:"exports,omitempty"`
	Imports      *float64 `json:"imports,omitempty"`
	TradeBalance *float64 `json:"trade_balance,omitempty"`
}

type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

type Summary struct {
	MaxBalance         float64 `json:"max_balance"`
	MaxBalanceYear     int     `json:"max_balance_year"`
	MaxExports         float64 `json:"max_exports"`
	MaxExportsYear     int     `json:"max_exports_year"`
	MaxImports         float64 `json:"max_imports"`
	MaxImportsYear     int     `json:"max_imports_year"`
	AvgPositiveBalance float64 `json:"avg_positive_balance"`
}

type Insights struct {
	SurplusYears int     `json:"surplus_years"`
	DeficitYears int     `json:"deficit_years"`
	SurplusTotal float64 `json:"surplus_total"`
	DeficitTotal float64 `json:"deficit_total"`
}

// ForecastTable holds synthetic records for the years after the last
// historical year. TradeBalance is always Exports - Imports.
type ForecastTable []Record

func (f ForecastTable) Horizon() int {
	return len(f)
}
