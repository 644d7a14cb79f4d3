// Package httpapi serves the trade pipeline over HTTP. The handler holds
// only the immutable base table, so every request is an independent
// recomputation and concurrent readers need no locking.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"tradeboard/internal/chart"
	"tradeboard/internal/export"
	"tradeboard/internal/forecast"
	"tradeboard/internal/model"
	"tradeboard/internal/stats"
	"tradeboard/internal/view"
)

type Options struct {
	DefaultHorizon int
	Report         export.ReportOptions
	Theme          chart.Theme
}

func DefaultOptions() Options {
	return Options{
		DefaultHorizon: forecast.DefaultHorizon,
		Report:         export.DefaultReportOptions(),
		Theme:          chart.DefaultTheme(),
	}
}

type Handler struct {
	table    model.Table
	opts     Options
	logger   zerolog.Logger
	metrics  *Metrics
	validate *validator.Validate
}

func New(table model.Table, opts Options, logger zerolog.Logger, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if opts.DefaultHorizon == 0 {
		opts.DefaultHorizon = forecast.DefaultHorizon
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		table:    table,
		opts:     opts,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		metrics:  metrics,
		validate: v,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument(h.metrics, h.logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", h.GetRecords)
		r.Get("/summary", h.GetSummary)
		r.Get("/view", h.GetView)
		r.Get("/forecast", h.GetForecast)
		r.Get("/charts/{kind}", h.GetChart)
		r.Get("/export/{format}", h.GetExport)
	})
	return r
}

type horizonRequest struct {
	Horizon int `json:"horizon" validate:"min=1,max=50"`
}

type viewRequest struct {
	From int `json:"from" validate:"ltefield=To"`
	To   int `json:"to"`
}

type summaryResponse struct {
	Summary  model.Summary  `json:"summary"`
	Insights model.Insights `json:"insights"`
}

type viewResponse struct {
	Range   model.YearRange `json:"range"`
	Metrics []model.Metric  `json:"metrics"`
	Rows    []model.Row     `json:"rows"`
}

type forecastResponse struct {
	Horizon int                 `json:"horizon"`
	Model   forecast.Model      `json:"model"`
	Records model.ForecastTable `json:"records"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"status": "ok", "records": h.table.Len()})
}

func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.table.Records())
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := stats.Summarize(h.table)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	insights, err := stats.Insights(h.table)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, summaryResponse{Summary: summary, Insights: insights})
}

// GetView handles GET /api/view?from=&to=&metrics=. Missing bounds default
// to the table's years; an absent metrics parameter selects all metrics and
// an empty one selects none. The reported range is clamped to the data.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	yearRange, err := h.yearRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics, err := metricsParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows, err := view.Filter(h.table, yearRange, metrics)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, viewResponse{Range: view.Clamp(yearRange, h.table), Metrics: metrics, Rows: rows})
}

func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	horizon, err := h.horizon(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	trend, err := forecast.Trend(h.table)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	future, err := trend.Project(horizon)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, forecastResponse{Horizon: horizon, Model: trend, Records: future})
}

// GetChart handles GET /api/charts/{kind}?format=png|svg for the history and
// forecast pages.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	contentType, ok := map[string]string{"png": "image/png", "svg": "image/svg+xml"}[format]
	if !ok {
		h.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "format must be png or svg"))
		return
	}

	var (
		data []byte
		err  error
	)
	switch kind := chi.URLParam(r, "kind"); kind {
	case "history":
		data, err = h.historyChart(r, format)
	case "forecast":
		data, err = h.forecastChart(r, format)
	default:
		err = newAPIError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown chart: %s", kind))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) historyChart(r *http.Request, format string) ([]byte, error) {
	p, err := h.historyPlot(r)
	if err != nil {
		return nil, err
	}
	return chart.Encode(p, format, 10*vg.Inch, 5*vg.Inch)
}

// historyPlot draws the years selected by from and to.
func (h *Handler) historyPlot(r *http.Request) (*plot.Plot, error) {
	yearRange, err := h.yearRange(r)
	if err != nil {
		return nil, err
	}
	metrics, err := metricsParam(r)
	if err != nil {
		return nil, err
	}
	subset, err := view.Subset(h.table, yearRange)
	if err != nil {
		return nil, err
	}
	return chart.History(subset, metrics, h.opts.Theme)
}

func (h *Handler) forecastChart(r *http.Request, format string) ([]byte, error) {
	horizon, err := h.horizon(r)
	if err != nil {
		return nil, err
	}
	future, err := forecast.Forecast(h.table, horizon)
	if err != nil {
		return nil, err
	}
	p, err := chart.Projection(h.table, future, h.opts.Theme)
	if err != nil {
		return nil, err
	}
	return chart.Encode(p, format, 10*vg.Inch, 5*vg.Inch)
}

// GetExport handles GET /api/export/{format}. CSV and JSON work on an empty
// table; the report formats need a summary.
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, newAPIError(http.StatusNotFound, "NOT_FOUND", err.Error()))
		return
	}

	bundle := export.Bundle{Records: h.table.Records(), Report: h.opts.Report}
	if format == export.FormatReport || format == export.FormatPDF || format == export.FormatXLSX {
		bundle.Summary, err = stats.Summarize(h.table)
		if err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if format == export.FormatXLSX {
		horizon, err := h.horizon(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		bundle.Forecast, err = forecast.Forecast(h.table, horizon)
		if err != nil && !errors.Is(err, forecast.ErrDegenerateFit) {
			h.fail(w, r, err)
			return
		}
	}

	data, err := export.Render(format, bundle)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.exports.WithLabelValues(string(format)).Inc()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// yearRange reads from and to, defaulting to the table's first and last
// years.
func (h *Handler) yearRange(r *http.Request) (model.YearRange, error) {
	full := view.FullRange(h.table)
	from, err := intParam(r, "from", full.Min)
	if err != nil {
		return model.YearRange{}, err
	}
	to, err := intParam(r, "to", full.Max)
	if err != nil {
		return model.YearRange{}, err
	}
	req := viewRequest{From: from, To: to}
	if err := h.validate.Struct(req); err != nil {
		return model.YearRange{}, fmt.Errorf("%w: %v", view.ErrInvalidRange, err)
	}
	return model.YearRange{Min: req.From, Max: req.To}, nil
}

func (h *Handler) horizon(r *http.Request) (int, error) {
	horizon, err := intParam(r, "horizon", h.opts.DefaultHorizon)
	if err != nil {
		return 0, err
	}
	if err := h.validate.Struct(horizonRequest{Horizon: horizon}); err != nil {
		return 0, fmt.Errorf("%w: %d", forecast.ErrInvalidHorizon, horizon)
	}
	return horizon, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	event := h.logger.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("error_code", apiErr.ErrorCode).
		Msg("request failed")
	_ = render.Render(w, r, apiErr)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("%s must be an integer", name))
	}
	return value, nil
}

func metricsParam(r *http.Request) ([]model.Metric, error) {
	values, ok := r.URL.Query()["metrics"]
	if !ok {
		return model.AllMetrics(), nil
	}
	var names []string
	for _, value := range values {
		names = append(names, strings.Split(value, ",")...)
	}
	return view.ParseMetrics(names)
}
