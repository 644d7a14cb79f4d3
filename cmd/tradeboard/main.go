package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradeboard/internal/config"
	"tradeboard/internal/dataset"
	"tradeboard/internal/logging"
	"tradeboard/internal/model"
	"tradeboard/internal/store/sqlite"
)

type app struct {
	configPath     string
	sourceKind     string
	sourceLocation string
	logLevel       string

	cfg    config.Config
	logger zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tradeboard:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tradeboard",
		Short:         "China trade history: statistics, views, forecasts and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.sourceKind, "source", "", "data source: embedded, csv or sqlite")
	flags.StringVar(&a.sourceLocation, "location", "", "file path for csv and sqlite sources")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override")

	root.AddCommand(
		serveCmd(a),
		summaryCmd(a),
		viewCmd(a),
		forecastCmd(a),
		exportCmd(a),
		seedCmd(a),
	)
	return root
}

// init loads config, then applies flags the user set explicitly.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Kind = strings.ToLower(strings.TrimSpace(a.sourceKind))
	}
	if flags.Changed("location") {
		cfg.Source.Location = a.sourceLocation
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(a.logLevel))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Logging, cmd.ErrOrStderr())
	return nil
}

func (a *app) loadTable(ctx context.Context) (model.Table, error) {
	source, closeFn, err := buildSource(a.cfg.Source)
	if err != nil {
		return model.Table{}, err
	}
	defer closeFn()

	table, err := dataset.LoadFrom(ctx, source)
	if err != nil {
		return model.Table{}, err
	}
	first, _ := table.FirstYear()
	last, _ := table.LastYear()
	a.logger.Debug().
		Str("source", source.Name()).
		Int("records", table.Len()).
		Int("first_year", first).
		Int("last_year", last).
		Msg("table loaded")
	return table, nil
}

func buildSource(cfg config.SourceConfig) (dataset.Source, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "embedded":
		return dataset.Embedded(), noop, nil
	case "csv":
		return dataset.CSVFile(cfg.Location), noop, nil
	case "sqlite":
		st, err := sqlite.New(cfg.Location)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown source: %s", cfg.Kind)
	}
}
