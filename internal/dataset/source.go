package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"tradeboard/internal/model"
)

//go:embed data/china_trade.csv
var embeddedCSV []byte

type Source interface {
	Name() string
	Columns(ctx context.Context) (Columns, error)
}

func LoadFrom(ctx context.Context, source Source) (model.Table, error) {
	columns, err := source.Columns(ctx)
	if err != nil {
		return model.Table{}, fmt.Errorf("%s: %w", source.Name(), err)
	}
	table, err := Load(columns)
	if err != nil {
		return model.Table{}, fmt.Errorf("%s: %w", source.Name(), err)
	}
	return table, nil
}

type embeddedSource struct{}

// Embedded is the built-in 1950-2025 China series in billions USD.
// 1950-1959 carry no values.
func Embedded() Source {
	return embeddedSource{}
}

func (embeddedSource) Name() string {
	return "embedded"
}

func (embeddedSource) Columns(ctx context.Context) (Columns, error) {
	_ = ctx
	return ParseCSV(bytes.NewReader(embeddedCSV))
}

type csvFileSource struct {
	path string
}

func CSVFile(path string) Source {
	return &csvFileSource{path: path}
}

func (s *csvFileSource) Name() string {
	return "csv:" + s.path
}

func (s *csvFileSource) Columns(ctx context.Context) (Columns, error) {
	_ = ctx
	if strings.TrimSpace(s.path) == "" {
		return Columns{}, errors.New("csv path is required")
	}
	file, err := os.Open(s.path)
	if err != nil {
		return Columns{}, err
	}
	defer file.Close()
	return ParseCSV(file)
}

// ParseCSV reads a year,exports,imports,trade_balance table. Header names
// are matched case-insensitively and may appear in any order; empty cells
// become missing values.
func ParseCSV(r io.Reader) (Columns, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Columns{}, fmt.Errorf("%w: missing header", ErrSchema)
		}
		return Columns{}, err
	}
	index := normalizeHeader(header)
	for _, key := range []string{"year", "exports", "imports", "trade_balance"} {
		if _, ok := index[key]; !ok {
			return Columns{}, fmt.Errorf("%w: missing column %q", ErrSchema, key)
		}
	}

	var columns Columns
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Columns{}, err
		}
		line++
		if len(row) != len(header) {
			return Columns{}, fmt.Errorf("%w: line %d has %d fields, want %d", ErrSchema, line, len(row), len(header))
		}

		year, err := strconv.Atoi(getCell(row, index, "year"))
		if err != nil {
			return Columns{}, fmt.Errorf("%w: line %d: invalid year: %v", ErrSchema, line, err)
		}
		exports, err := parseOptional(getCell(row, index, "exports"))
		if err != nil {
			return Columns{}, fmt.Errorf("%w: line %d: exports: %v", ErrSchema, line, err)
		}
		imports, err := parseOptional(getCell(row, index, "imports"))
		if err != nil {
			return Columns{}, fmt.Errorf("%w: line %d: imports: %v", ErrSchema, line, err)
		}
		balance, err := parseOptional(getCell(row, index, "trade_balance"))
		if err != nil {
			return Columns{}, fmt.Errorf("%w: line %d: trade_balance: %v", ErrSchema, line, err)
		}
		columns.Append(year, exports, imports, balance)
	}
	return columns, nil
}

func normalizeHeader(header []string) map[string]int {
	result := make(map[string]int, len(header))
	for i, value := range header {
		key := strings.ToLower(strings.TrimSpace(value))
		key = strings.ReplaceAll(key, " ", "_")
		if key == "" {
			continue
		}
		result[key] = i
	}
	return result
}

func getCell(record []string, header map[string]int, key string) string {
	index, ok := header[key]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// parseOptional maps empty and NaN cells to missing. Infinite values are
// rejected.
func parseOptional(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(parsed) {
		return nil, nil
	}
	if math.IsInf(parsed, 0) {
		return nil, fmt.Errorf("infinite value %q", value)
	}
	return &parsed, nil
}
