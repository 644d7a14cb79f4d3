package export

import (
	"fmt"
	"strings"

	"tradeboard/internal/model"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatReport Format = "report"
	FormatPDF    Format = "pdf"
	FormatXLSX   Format = "xlsx"
)

func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatReport, FormatPDF, FormatXLSX}
}

func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatCSV, FormatJSON, FormatReport, FormatPDF, FormatXLSX:
		return f, nil
	case "txt", "text":
		return FormatReport, nil
	case "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", value)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatReport:
		return "text/plain; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

func (f Format) FileName() string {
	switch f {
	case FormatCSV:
		return "china_trade_1950_2025.csv"
	case FormatJSON:
		return "china_trade_1950_2025.json"
	case FormatReport:
		return "China_Trade_Report_1950-2025.txt"
	case FormatPDF:
		return "China_Trade_Report_1950-2025.pdf"
	case FormatXLSX:
		return "china_trade_1950_2025.xlsx"
	default:
		return "export.bin"
	}
}

// Bundle is everything a download may need. Forecast is optional.
type Bundle struct {
	Records  []model.Record
	Summary  model.Summary
	Forecast model.ForecastTable
	Report   ReportOptions
}

func Render(format Format, bundle Bundle) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CSV(bundle.Records)
	case FormatJSON:
		return JSON(bundle.Records)
	case FormatReport:
		return ReportWith(bundle.Summary, bundle.Report), nil
	case FormatPDF:
		return PDF(bundle.Summary, bundle.Report)
	case FormatXLSX:
		return XLSX(bundle.Records, bundle.Summary, bundle.Forecast)
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}
