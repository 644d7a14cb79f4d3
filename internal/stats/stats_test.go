package stats

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/dataset"
	"tradeboard/internal/model"
)

func recentTable(t *testing.T) model.Table {
	t.Helper()
	table, err := model.NewTable([]model.Record{
		{Year: 2020, Exports: 2629, Imports: 2496, TradeBalance: 133},
		{Year: 2021, Exports: 2730, Imports: 2375, TradeBalance: 355},
		{Year: 2022, Exports: 3554, Imports: 3093, TradeBalance: 461},
		{Year: 2023, Exports: 3718, Imports: 3140, TradeBalance: 578},
	})
	require.NoError(t, err)
	return table
}

func TestSummarizeRecentYears(t *testing.T) {
	summary, err := Summarize(recentTable(t))
	require.NoError(t, err)

	assert.Equal(t, 3718.0, summary.MaxExports)
	assert.Equal(t, 2023, summary.MaxExportsYear)
	assert.Equal(t, 578.0, summary.MaxBalance)
	assert.Equal(t, 2023, summary.MaxBalanceYear)
	assert.Equal(t, 3140.0, summary.MaxImports)
	assert.Equal(t, 2023, summary.MaxImportsYear)
	assert.InDelta(t, (133.0+355+461+578)/4, summary.AvgPositiveBalance, 1e-9)
}

func TestSummarizeTieGoesToEarliestYear(t *testing.T) {
	table, err := model.NewTable([]model.Record{
		{Year: 2000, Exports: 5, Imports: 3, TradeBalance: 2},
		{Year: 2001, Exports: 5, Imports: 3, TradeBalance: 2},
	})
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, 2000, summary.MaxExportsYear)
	assert.Equal(t, 2000, summary.MaxImportsYear)
	assert.Equal(t, 2000, summary.MaxBalanceYear)
}

func TestSummarizeNoSurplusYears(t *testing.T) {
	table, err := model.NewTable([]model.Record{
		{Year: 1975, Exports: 25.80, Imports: 38.30, TradeBalance: -12.50},
		{Year: 1976, Exports: 26.20, Imports: 33.59, TradeBalance: -7.39},
		{Year: 1977, Exports: 30, Imports: 30, TradeBalance: 0},
	})
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.AvgPositiveBalance)
	assert.Equal(t, 0.0, summary.MaxBalance)
	assert.Equal(t, 1977, summary.MaxBalanceYear)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(model.Table{})
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Insights(model.Table{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSummarizeEmbedded(t *testing.T) {
	table, err := dataset.LoadFrom(context.Background(), dataset.Embedded())
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, 1190.0, summary.MaxBalance)
	assert.Equal(t, 2025, summary.MaxBalanceYear)
	assert.Equal(t, 3770.0, summary.MaxExports)
	assert.Equal(t, 2025, summary.MaxExportsYear)
	assert.Equal(t, 3140.0, summary.MaxImports)
	assert.Equal(t, 2022, summary.MaxImportsYear)
	assert.Greater(t, summary.AvgPositiveBalance, 0.0)
}

func TestInsights(t *testing.T) {
	table, err := model.NewTable([]model.Record{
		{Year: 1974, Exports: 24.76, Imports: 24.71, TradeBalance: 0.05},
		{Year: 1975, Exports: 25.80, Imports: 38.30, TradeBalance: -12.50},
		{Year: 1976, Exports: 26.20, Imports: 33.59, TradeBalance: -7.39},
		{Year: 1977, Exports: 34.07, Imports: 33.78, TradeBalance: 0.29},
		{Year: 1978, Exports: 40, Imports: 40, TradeBalance: 0},
	})
	require.NoError(t, err)

	insights, err := Insights(table)
	require.NoError(t, err)
	assert.Equal(t, 2, insights.SurplusYears)
	assert.Equal(t, 2, insights.DeficitYears)
	assert.InDelta(t, 0.34, insights.SurplusTotal, 1e-9)
	assert.InDelta(t, 19.89, insights.DeficitTotal, 1e-9)
}

func TestSummarizeCSVWithNaNRow(t *testing.T) {
	columns, err := dataset.ParseCSV(strings.NewReader("year,exports,imports,trade_balance\n2020,NaN,1,NaN\n2021,5,2,3\n"))
	require.NoError(t, err)
	table, err := dataset.Load(columns)
	require.NoError(t, err)

	summary, err := Summarize(table)
	require.NoError(t, err)
	assert.Equal(t, model.Summary{
		MaxBalance: 3, MaxBalanceYear: 2021,
		MaxExports: 5, MaxExportsYear: 2021,
		MaxImports: 2, MaxImportsYear: 2021,
		AvgPositiveBalance: 3,
	}, summary)
}

func TestSummarizeCSVWithInfinityFailsToLoad(t *testing.T) {
	_, err := dataset.ParseCSV(strings.NewReader("year,exports,imports,trade_balance\n2020,Inf,1,2\n"))
	assert.ErrorIs(t, err, dataset.ErrSchema)
}
