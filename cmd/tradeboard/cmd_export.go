package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tradeboard/internal/dataset"
	"tradeboard/internal/export"
	"tradeboard/internal/forecast"
	"tradeboard/internal/model"
	"tradeboard/internal/stats"
	"tradeboard/internal/store"
	"tradeboard/internal/store/sqlite"
)

func exportCmd(a *app) *cobra.Command {
	var (
		formats []string
		outDir  string
		horizon int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the table and report downloads to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("horizon") {
				horizon = a.cfg.Forecast.DefaultHorizon
			}
			parsed := make([]export.Format, 0, len(formats))
			for _, value := range formats {
				format, err := export.ParseFormat(value)
				if err != nil {
					return err
				}
				parsed = append(parsed, format)
			}
			return a.export(cmd.Context(), parsed, outDir, horizon)
		},
	}
	cmd.Flags().StringSliceVar(&formats, "format", []string{"csv", "json", "report"}, "csv, json, report, pdf and/or xlsx")
	cmd.Flags().StringVar(&outDir, "out", "exports", "output directory")
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon, "forecast years in the xlsx workbook")
	return cmd
}

func (a *app) export(ctx context.Context, formats []export.Format, outDir string, horizon int) error {
	if len(formats) == 0 {
		return errors.New("no export formats provided")
	}
	table, err := a.loadTable(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, format := range formats {
		bundle, err := buildBundle(table, format, horizon)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		data, err := export.Render(format, bundle)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := filepath.Join(outDir, format.FileName())
		if err := writeFile(path, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		a.logger.Info().Str("format", string(format)).Str("path", path).Int("bytes", len(data)).Msg("exported")
	}
	return nil
}

// buildBundle computes only what format needs, so csv and json still work
// on an empty table.
func buildBundle(table model.Table, format export.Format, horizon int) (export.Bundle, error) {
	bundle := export.Bundle{Records: table.Records(), Report: export.DefaultReportOptions()}
	switch format {
	case export.FormatReport, export.FormatPDF, export.FormatXLSX:
		summary, err := stats.Summarize(table)
		if err != nil {
			return export.Bundle{}, err
		}
		bundle.Summary = summary
	}
	if format == export.FormatXLSX {
		future, err := forecast.Forecast(table, horizon)
		if err != nil && !errors.Is(err, forecast.ErrDegenerateFit) {
			return export.Bundle{}, err
		}
		bundle.Forecast = future
	}
	return bundle, nil
}

func writeFile(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Close()
}

func seedCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy the configured source columns into a sqlite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.seed(cmd.Context(), dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "tradeboard.db", "sqlite database path (empty validates without writing)")
	return cmd
}

type columnWriter interface {
	InsertColumns(ctx context.Context, columns dataset.Columns) error
}

func openStore(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func (a *app) seed(ctx context.Context, dbPath string) error {
	source, closeFn, err := buildSource(a.cfg.Source)
	if err != nil {
		return err
	}
	defer closeFn()

	columns, err := source.Columns(ctx)
	if err != nil {
		return err
	}
	// Validate before writing so a malformed source leaves the db untouched.
	table, err := dataset.Load(columns)
	if err != nil {
		return err
	}

	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	// Stores that keep raw columns also keep the years without values.
	if cw, ok := st.(columnWriter); ok {
		err = cw.InsertColumns(ctx, columns)
	} else {
		err = st.UpsertRecords(ctx, table.Records())
	}
	if err != nil {
		return err
	}

	stored, err := st.ListRecords(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(dbPath) != "" && len(stored) < table.Len() {
		return fmt.Errorf("seed: db holds %d complete records, loaded %d", len(stored), table.Len())
	}
	a.logger.Info().
		Str("source", source.Name()).
		Str("db", dbPath).
		Int("rows", columns.Len()).
		Int("complete", table.Len()).
		Int("stored", len(stored)).
		Msg("seeded")
	return nil
}
