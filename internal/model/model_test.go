package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input string
		want  Metric
	}{
		{"exports", MetricExports},
		{"Export", MetricExports},
		{" imports ", MetricImports},
		{"Trade Balance", MetricTradeBalance},
		{"trade-balance", MetricTradeBalance},
		{"balance", MetricTradeBalance},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMetric(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMetric("gdp")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestNewTableRejectsUnordered(t *testing.T) {
	_, err := NewTable([]Record{{Year: 2021}, {Year: 2020}})
	assert.ErrorIs(t, err, ErrUnordered)

	_, err = NewTable([]Record{{Year: 2021}, {Year: 2021}})
	assert.ErrorIs(t, err, ErrUnordered)
}

func TestTableIsImmutable(t *testing.T) {
	source := []Record{{Year: 2020, Exports: 1}, {Year: 2021, Exports: 2}}
	table, err := NewTable(source)
	require.NoError(t, err)

	source[0].Exports = 99
	assert.Equal(t, 1.0, table.At(0).Exports)

	records := table.Records()
	records[1].Exports = 42
	assert.Equal(t, 2.0, table.At(1).Exports)
}

func TestTableAccessors(t *testing.T) {
	table, err := NewTable([]Record{
		{Year: 2020, Exports: 10, Imports: 4, TradeBalance: 6},
		{Year: 2021, Exports: 12, Imports: 5, TradeBalance: 7},
	})
	require.NoError(t, err)

	first, ok := table.FirstYear()
	require.True(t, ok)
	last, ok := table.LastYear()
	require.True(t, ok)
	assert.Equal(t, 2020, first)
	assert.Equal(t, 2021, last)
	assert.Equal(t, []int{2020, 2021}, table.Years())
	assert.Equal(t, []float64{4, 5}, table.Series(MetricImports))

	var empty Table
	_, ok = empty.LastYear()
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}
