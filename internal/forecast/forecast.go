// Package forecast extrapolates exports and imports with an ordinary
// least-squares line per metric.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"tradeboard/internal/model"
)

const (
	MinHorizon     = 1
	MaxHorizon     = 50
	DefaultHorizon = 5
)

var (
	ErrDegenerateFit  = errors.New("forecast: degenerate fit")
	ErrInvalidHorizon = errors.New("forecast: invalid horizon")
)

// Line is value = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Fit solves the normal equations for xs and ys. It needs at least two
// points and some spread in xs.
func Fit(xs, ys []float64) (Line, error) {
	if len(xs) != len(ys) {
		return Line{}, fmt.Errorf("%w: %d x values, %d y values", ErrDegenerateFit, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Line{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrDegenerateFit, len(xs))
	}
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			return Line{}, fmt.Errorf("%w: non-finite value at index %d", ErrDegenerateFit, i)
		}
	}
	if variance := stat.Variance(xs, nil); variance == 0 || math.IsNaN(variance) {
		return Line{}, fmt.Errorf("%w: zero variance in x", ErrDegenerateFit)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Line{Intercept: alpha, Slope: beta}, nil
}

type Model struct {
	LastYear int  `json:"last_year"`
	Exports  Line `json:"exports"`
	Imports  Line `json:"imports"`
}

// Trend fits exports and imports against year over the whole table.
func Trend(table model.Table) (Model, error) {
	if table.Len() < 2 {
		return Model{}, fmt.Errorf("%w: need at least 2 historical years, got %d", ErrDegenerateFit, table.Len())
	}

	years := make([]float64, table.Len())
	for i, year := range table.Years() {
		years[i] = float64(year)
	}

	exports, err := Fit(years, table.Series(model.MetricExports))
	if err != nil {
		return Model{}, fmt.Errorf("exports: %w", err)
	}
	imports, err := Fit(years, table.Series(model.MetricImports))
	if err != nil {
		return Model{}, fmt.Errorf("imports: %w", err)
	}

	last, _ := table.LastYear()
	return Model{LastYear: last, Exports: exports, Imports: imports}, nil
}

// Project evaluates the model for the horizon years after LastYear.
func (m Model) Project(horizon int) (model.ForecastTable, error) {
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	out := make(model.ForecastTable, horizon)
	for i := 0; i < horizon; i++ {
		year := m.LastYear + 1 + i
		exports := m.Exports.At(float64(year))
		imports := m.Imports.At(float64(year))
		out[i] = model.Record{
			Year:         year,
			Exports:      exports,
			Imports:      imports,
			TradeBalance: exports - imports,
		}
	}
	return out, nil
}

// Forecast fits the table and projects horizon years ahead.
func Forecast(table model.Table, horizon int) (model.ForecastTable, error) {
	if err := ValidateHorizon(horizon); err != nil {
		return nil, err
	}
	trend, err := Trend(table)
	if err != nil {
		return nil, err
	}
	return trend.Project(horizon)
}

func ValidateHorizon(horizon int) error {
	if horizon < MinHorizon || horizon > MaxHorizon {
		return fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidHorizon, horizon, MinHorizon, MaxHorizon)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
