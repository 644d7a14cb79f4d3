// Package export serializes trade tables and summaries into downloadable
// byte streams. Nothing here touches the filesystem or the network.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tradeboard/internal/model"
)

var Header = []string{"year", "exports", "imports", "trade_balance"}

var ErrMalformed = errors.New("export: malformed input")

// CSV writes a header row and one row per record. An empty table yields the
// header only.
func CSV(records []model.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, record := range records {
		row := []string{
			strconv.Itoa(record.Year),
			formatNumber(record.Exports),
			formatNumber(record.Imports),
			formatNumber(record.TradeBalance),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCSV reads the output of CSV back into records.
func ParseCSV(data []byte) ([]model.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformed)
		}
		return nil, err
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformed, header)
	}

	records := make([]model.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		record, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string) (model.Record, error) {
	year, err := strconv.Atoi(row[0])
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: year %q", ErrMalformed, row[0])
	}
	values := make([]float64, 3)
	for i := range values {
		values[i], err = strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return model.Record{}, fmt.Errorf("%w: %s %q", ErrMalformed, Header[i+1], row[i+1])
		}
	}
	return model.Record{Year: year, Exports: values[0], Imports: values[1], TradeBalance: values[2]}, nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
