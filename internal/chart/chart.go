// Package chart renders trade tables with gonum/plot for the dashboard
// pages. Styling comes from an explicit Theme.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"tradeboard/internal/model"
)

var ErrNoData = errors.New("chart: no data to plot")

type Theme struct {
	Exports    color.Color
	Imports    color.Color
	Surplus    color.Color
	Deficit    color.Color
	LineWidth  vg.Length
	TitleSize  vg.Length
	Background color.Color
}

func DefaultTheme() Theme {
	return Theme{
		Exports:    color.RGBA{R: 0x00, G: 0xFF, B: 0x9D, A: 0xFF},
		Imports:    color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF},
		Surplus:    color.RGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0xA6},
		Deficit:    color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xA6},
		LineWidth:  vg.Points(2),
		TitleSize:  vg.Points(16),
		Background: color.White,
	}
}

// History plots the requested metrics over the table years. Exports and
// imports are lines; trade balance is drawn as bars colored by sign.
func History(table model.Table, metrics []model.Metric, theme Theme) (*plot.Plot, error) {
	if table.Len() == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Trade Evolution Over Time", theme)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Billions USD"

	for _, metric := range metrics {
		switch metric {
		case model.MetricExports, model.MetricImports:
			line, err := plotter.NewLine(seriesXYs(table.Records(), metric))
			if err != nil {
				return nil, err
			}
			line.Color = metricColor(metric, theme)
			line.Width = theme.LineWidth
			p.Add(line)
			p.Legend.Add(metric.Label(), line)
		case model.MetricTradeBalance:
			if err := addBalanceBars(p, table.Records(), theme); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownMetric, metric)
		}
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Projection continues the historical export and import lines with the
// forecast drawn dashed.
func Projection(table model.Table, future model.ForecastTable, theme Theme) (*plot.Plot, error) {
	if table.Len() == 0 || len(future) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(fmt.Sprintf("Forecast %d Years Ahead", len(future)), theme)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Billions USD"

	history := table.Records()
	last := history[len(history)-1]
	bridged := append([]model.Record{last}, future...)

	for _, metric := range []model.Metric{model.MetricExports, model.MetricImports} {
		past, err := plotter.NewLine(seriesXYs(history, metric))
		if err != nil {
			return nil, err
		}
		past.Color = metricColor(metric, theme)
		past.Width = theme.LineWidth

		projected, err := plotter.NewLine(seriesXYs(bridged, metric))
		if err != nil {
			return nil, err
		}
		projected.Color = metricColor(metric, theme)
		projected.Width = theme.LineWidth
		projected.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

		p.Add(past, projected)
		p.Legend.Add(metric.Label(), past)
	}

	balance, err := plotter.NewLine(seriesXYs(future, model.MetricTradeBalance))
	if err != nil {
		return nil, err
	}
	balance.Color = theme.Surplus
	balance.Width = theme.LineWidth
	balance.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
	p.Add(balance)
	p.Legend.Add("Balance", balance)

	p.Add(plotter.NewGrid())
	return p, nil
}

// Encode renders p in one of the formats gonum/plot supports: png, svg,
// pdf, eps, jpg, tif.
func Encode(p *plot.Plot, format string, width, height vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(width, height, format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newPlot(title string, theme Theme) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = theme.TitleSize
	p.BackgroundColor = theme.Background
	p.Legend.Top = true
	return p
}

// addBalanceBars lays one bar slot per calendar year from the first to the
// last record, so gaps in the table stay empty.
func addBalanceBars(p *plot.Plot, records []model.Record, theme Theme) error {
	first, last := records[0].Year, records[len(records)-1].Year
	span := last - first + 1
	surplus := make(plotter.Values, span)
	deficit := make(plotter.Values, span)
	for _, record := range records {
		i := record.Year - first
		if record.TradeBalance >= 0 {
			surplus[i] = record.TradeBalance
		} else {
			deficit[i] = record.TradeBalance
		}
	}

	for _, group := range []struct {
		values plotter.Values
		color  color.Color
		label  string
	}{
		{surplus, theme.Surplus, "Surplus"},
		{deficit, theme.Deficit, "Deficit"},
	} {
		bars, err := plotter.NewBarChart(group.values, vg.Points(4))
		if err != nil {
			return err
		}
		bars.XMin = float64(first)
		bars.Color = group.color
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.Legend.Add(group.label, bars)
	}
	return nil
}

func seriesXYs(records []model.Record, metric model.Metric) plotter.XYs {
	points := make(plotter.XYs, len(records))
	for i, record := range records {
		points[i].X = float64(record.Year)
		points[i].Y = record.Value(metric)
	}
	return points
}

func metricColor(metric model.Metric, theme Theme) color.Color {
	switch metric {
	case model.MetricExports:
		return theme.Exports
	case model.MetricImports:
		return theme.Imports
	default:
		return theme.Surplus
	}
}
