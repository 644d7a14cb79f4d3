package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tradeboard/internal/forecast"
	"tradeboard/internal/model"
	"tradeboard/internal/stats"
	"tradeboard/internal/view"
)

func summaryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print headline statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := stats.Summarize(table)
			if err != nil {
				return err
			}
			insights, err := stats.Insights(table)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"summary": summary, "insights": insights})
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Highest surplus\t%s\t%d\n", amount(summary.MaxBalance), summary.MaxBalanceYear)
			fmt.Fprintf(tw, "Highest exports\t%s\t%d\n", amount(summary.MaxExports), summary.MaxExportsYear)
			fmt.Fprintf(tw, "Highest imports\t%s\t%d\n", amount(summary.MaxImports), summary.MaxImportsYear)
			fmt.Fprintf(tw, "Average positive surplus\t%s\t\n", amount(summary.AvgPositiveBalance))
			fmt.Fprintf(tw, "Surplus years\t%d\t\n", insights.SurplusYears)
			fmt.Fprintf(tw, "Deficit years\t%d\t\n", insights.DeficitYears)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func viewCmd(a *app) *cobra.Command {
	var (
		from, to int
		metrics  []string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print records within a year range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			r := view.FullRange(table)
			if cmd.Flags().Changed("from") {
				r.Min = from
			}
			if cmd.Flags().Changed("to") {
				r.Max = to
			}
			selected := model.AllMetrics()
			if cmd.Flags().Changed("metrics") {
				if selected, err = view.ParseMetrics(metrics); err != nil {
					return err
				}
			}

			rows, err := view.Filter(table, r, selected)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeRows(cmd.OutOrStdout(), rows, selected)
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first year (default: first year in the table)")
	cmd.Flags().IntVar(&to, "to", 0, "last year (default: last year in the table)")
	cmd.Flags().StringSliceVar(&metrics, "metrics", nil, "exports, imports and/or trade_balance")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func forecastCmd(a *app) *cobra.Command {
	var (
		horizon int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project exports, imports and balance with a linear trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("horizon") {
				horizon = a.cfg.Forecast.DefaultHorizon
			}
			table, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			future, err := forecast.Forecast(table, horizon)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), future)
			}
			rows := make([]model.Row, len(future))
			for i, record := range future {
				exports, imports, balance := record.Exports, record.Imports, record.TradeBalance
				rows[i] = model.Row{Year: record.Year, Exports: &exports, Imports: &imports, TradeBalance: &balance}
			}
			return writeRows(cmd.OutOrStdout(), rows, model.AllMetrics())
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon,
		fmt.Sprintf("years to project (%d-%d)", forecast.MinHorizon, forecast.MaxHorizon))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeRows(w io.Writer, rows []model.Row, metrics []model.Metric) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"Year"}
	for _, metric := range metrics {
		header = append(header, metric.Label())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, row := range rows {
		cells := []string{fmt.Sprint(row.Year)}
		for _, metric := range metrics {
			cells = append(cells, cell(row, metric))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func cell(row model.Row, metric model.Metric) string {
	var v *float64
	switch metric {
	case model.MetricExports:
		v = row.Exports
	case model.MetricImports:
		v = row.Imports
	case model.MetricTradeBalance:
		v = row.TradeBalance
	}
	if v == nil {
		return "-"
	}
	return humanize.FormatFloat("#,###.##", *v)
}

func amount(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v) + "B"
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
