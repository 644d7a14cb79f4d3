package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tradeboard/internal/dataset"
	"tradeboard/internal/model"
	"tradeboard/internal/store"
)

type Store struct {
	db   *sql.DB
	path string
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) UpsertRecords(ctx context.Context, records []model.Record) error {
	rows := make([]upsertRow, len(records))
	for i, record := range records {
		rows[i] = upsertRow{year: record.Year, exports: record.Exports, imports: record.Imports, balance: record.TradeBalance}
	}
	return s.upsert(ctx, rows)
}

// upsertRow carries one year's values; a nil value is stored as NULL.
type upsertRow struct {
	year                      int
	exports, imports, balance any
}

func (s *Store) upsert(ctx context.Context, rows []upsertRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_records (year, exports, imports, trade_balance, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year)
		DO UPDATE SET
			exports = excluded.exports,
			imports = excluded.imports,
			trade_balance = excluded.trade_balance,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.year, row.exports, row.imports, row.balance, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: upsert year %d: %w", row.year, err)
		}
	}

	return tx.Commit()
}

// ListRecords returns only complete rows, ascending by year.
func (s *Store) ListRecords(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, exports, imports, trade_balance
		FROM trade_records
		WHERE exports IS NOT NULL AND imports IS NOT NULL AND trade_balance IS NOT NULL
		ORDER BY year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var record model.Record
		if err := rows.Scan(&record.Year, &record.Exports, &record.Imports, &record.TradeBalance); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) Name() string {
	return "sqlite:" + s.path
}

// Columns exposes every stored year, NULL values included, so the dataset
// loader decides which rows are complete.
func (s *Store) Columns(ctx context.Context) (dataset.Columns, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, exports, imports, trade_balance
		FROM trade_records
		ORDER BY year
	`)
	if err != nil {
		return dataset.Columns{}, err
	}
	defer rows.Close()

	var columns dataset.Columns
	for rows.Next() {
		var year int
		var exports, imports, balance sql.NullFloat64
		if err := rows.Scan(&year, &exports, &imports, &balance); err != nil {
			return dataset.Columns{}, err
		}
		columns.Append(year, nullable(exports), nullable(imports), nullable(balance))
	}
	if err := rows.Err(); err != nil {
		return dataset.Columns{}, err
	}
	return columns, nil
}

// InsertColumns writes aligned columns as-is, missing values as NULL.
func (s *Store) InsertColumns(ctx context.Context, columns dataset.Columns) error {
	if columns.Len() != len(columns.Exports) || columns.Len() != len(columns.Imports) || columns.Len() != len(columns.TradeBalance) {
		return dataset.ErrSchema
	}

	rows := make([]upsertRow, columns.Len())
	for i, year := range columns.Years {
		rows[i] = upsertRow{
			year:    year,
			exports: nullValue(columns.Exports[i]),
			imports: nullValue(columns.Imports[i]),
			balance: nullValue(columns.TradeBalance[i]),
		}
	}
	return s.upsert(ctx, rows)
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS trade_records (
			year INTEGER PRIMARY KEY,
			exports REAL,
			imports REAL,
			trade_balance REAL,
			ingested_at TEXT NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

func nullable(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullValue(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

var (
	_ store.Store    = (*Store)(nil)
	_ dataset.Source = (*Store)(nil)
)
