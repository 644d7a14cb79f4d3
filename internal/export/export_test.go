package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tradeboard/internal/dataset"
	"tradeboard/internal/model"
	"tradeboard/internal/stats"
)

func embeddedRecords(t *testing.T) []model.Record {
	t.Helper()
	table, err := dataset.LoadFrom(context.Background(), dataset.Embedded())
	require.NoError(t, err)
	return table.Records()
}

func sampleSummary() model.Summary {
	return model.Summary{
		MaxBalance:         1190,
		MaxBalanceYear:     2025,
		MaxExports:         3770,
		MaxExportsYear:     2025,
		MaxImports:         3140,
		MaxImportsYear:     2022,
		AvgPositiveBalance: 215.456,
	}
}

func TestCSVHeaderAndRows(t *testing.T) {
	data, err := CSV([]model.Record{
		{Year: 2022, Exports: 3554, Imports: 3093, TradeBalance: 461},
		{Year: 1960, Exports: 1.88, Imports: 1.89, TradeBalance: -0.01},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year,exports,imports,trade_balance", lines[0])
	assert.Equal(t, "2022,3554,3093,461", lines[1])
	assert.Equal(t, "1960,1.88,1.89,-0.01", lines[2])
}

func TestCSVEmptyTable(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "year,exports,imports,trade_balance\n", string(data))

	records, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVRoundTrip(t *testing.T) {
	records := embeddedRecords(t)
	data, err := CSV(records)
	require.NoError(t, err)

	parsed, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Equal(t, records, parsed)
}

func TestParseCSVRejectsForeignHeader(t *testing.T) {
	_, err := ParseCSV([]byte("Year,Exports\n2020,1\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseCSV([]byte("year,exports,imports,trade_balance\n2020,x,1,1\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestJSONRoundTrip(t *testing.T) {
	records := embeddedRecords(t)
	data, err := JSON(records)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(`[{"year":1960,"exports":1.88,"imports":1.89,"trade_balance":-0.01}`)))

	parsed, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, records, parsed)
}

func TestJSONEmptyTable(t *testing.T) {
	data, err := JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = ParseJSON([]byte(`{"year":1}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReport(t *testing.T) {
	report := string(Report(sampleSummary()))
	assert.True(t, strings.HasPrefix(report, "China Trade Report 1950-2025\n"))
	assert.Contains(t, report, "Key Figures:\n")
	assert.Contains(t, report, "Highest Surplus: $1,190.00B  (2025)")
	assert.Contains(t, report, "Highest Exports: $3,770.00B  (2025)")
	assert.Contains(t, report, "Highest Imports: $3,140.00B  (2022)")
	assert.Contains(t, report, "Average Positive Surplus: $215.46B")
	assert.Contains(t, report, "Data: Historical records & official statistics")
}

func TestReportCustomOptions(t *testing.T) {
	report := string(ReportWith(model.Summary{MaxBalance: -3.5, MaxBalanceYear: 1990}, ReportOptions{Title: "Deficits"}))
	assert.Equal(t, "Deficits\n\nKey Figures:\n"+
		"  - Highest Surplus: $-3.50  (1990)\n"+
		"  - Highest Exports: $0.00  (0)\n"+
		"  - Highest Imports: $0.00  (0)\n"+
		"  - Average Positive Surplus: $0.00\n", report)
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleSummary(), DefaultReportOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPaginate(t *testing.T) {
	pages := paginate(reportLines(sampleSummary(), DefaultReportOptions()))
	require.Len(t, pages, 1)
	assert.Len(t, pages[0], 9)
	assert.Equal(t, marginTop, pages[0][0].y)

	opts := DefaultReportOptions()
	for i := 0; i < 60; i++ {
		opts.Narrative = append(opts.Narrative, "line")
	}
	pages = paginate(reportLines(sampleSummary(), opts))
	require.Greater(t, len(pages), 1)
	total := 0
	for _, page := range pages {
		require.NotEmpty(t, page)
		assert.Equal(t, marginTop, page[0].y)
		for _, line := range page {
			assert.GreaterOrEqual(t, line.y, marginBottom)
		}
		total += len(page)
	}
	assert.Equal(t, 9+60, total)

	data, err := PDF(sampleSummary(), opts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestXLSX(t *testing.T) {
	records := []model.Record{
		{Year: 2022, Exports: 3554, Imports: 3093, TradeBalance: 461},
		{Year: 2023, Exports: 3718, Imports: 3140, TradeBalance: 578},
	}
	future := model.ForecastTable{{Year: 2024, Exports: 3882, Imports: 3187, TradeBalance: 695}}

	data, err := XLSX(records, sampleSummary(), future)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetData, SheetSummary, SheetForecast}, f.GetSheetList())

	rows, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"2023", "3718", "3140", "578"}, rows[2])

	value, err := f.GetCellValue(SheetSummary, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Highest Exports", value)

	forecastRows, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	assert.Len(t, forecastRows, 2)

	for sheet, col := range map[string]string{SheetData: "D", SheetForecast: "A"} {
		width, err := f.GetColWidth(sheet, col)
		require.NoError(t, err)
		assert.Equal(t, float64(recordColumnWidth), width, sheet)
	}
	width, err := f.GetColWidth(SheetSummary, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(summaryLabelWidth), width)
}

func TestXLSXWithoutForecast(t *testing.T) {
	data, err := XLSX(nil, sampleSummary(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetData, SheetSummary}, f.GetSheetList())
}

func TestRenderDispatch(t *testing.T) {
	bundle := Bundle{
		Records: embeddedRecords(t),
		Report:  DefaultReportOptions(),
	}
	summary, err := stats.Summarize(mustTable(t, bundle.Records))
	require.NoError(t, err)
	bundle.Summary = summary

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			data, err := Render(format, bundle)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			assert.NotEmpty(t, format.ContentType())
			assert.NotEmpty(t, format.FileName())
		})
	}

	_, err = Render("html", bundle)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"CSV": FormatCSV, "text": FormatReport, "excel": FormatXLSX, " pdf ": FormatPDF} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func mustTable(t *testing.T, records []model.Record) model.Table {
	t.Helper()
	table, err := model.NewTable(records)
	require.NoError(t, err)
	return table
}
