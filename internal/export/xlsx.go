package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tradeboard/internal/model"
)

const (
	SheetData     = "Data"
	SheetSummary  = "Summary"
	SheetForecast = "Forecast"
)

const (
	recordColumnWidth = 16
	summaryLabelWidth = 28
)

// XLSX builds a workbook with the historical table, the headline figures
// and, when present, the forecast.
func XLSX(records []model.Record, summary model.Summary, future model.ForecastTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return nil, err
	}
	if err := writeRecordSheet(f, SheetData, records); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	summaryRows := [][]interface{}{
		{"Figure", "Value", "Year"},
		{"Highest Surplus", summary.MaxBalance, summary.MaxBalanceYear},
		{"Highest Exports", summary.MaxExports, summary.MaxExportsYear},
		{"Highest Imports", summary.MaxImports, summary.MaxImportsYear},
		{"Average Positive Surplus", summary.AvgPositiveBalance, nil},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", summaryLabelWidth); err != nil {
		return nil, fmt.Errorf("failed to size summary sheet: %w", err)
	}

	if len(future) > 0 {
		if _, err := f.NewSheet(SheetForecast); err != nil {
			return nil, err
		}
		if err := writeRecordSheet(f, SheetForecast, future); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRecordSheet(f *excelize.File, sheet string, records []model.Record) error {
	for i, header := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, cell[:1], cell[:1], recordColumnWidth); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", sheet, cell[:1], err)
		}
	}
	for i, record := range records {
		row := []interface{}{record.Year, record.Exports, record.Imports, record.TradeBalance}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}
