package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/dataset"
	"tradeboard/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "trade.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestUpsertAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.UpsertRecords(ctx, []model.Record{
		{Year: 2023, Exports: 3718, Imports: 3140, TradeBalance: 578},
		{Year: 2022, Exports: 3554, Imports: 3093, TradeBalance: 461},
	}))
	require.NoError(t, s.UpsertRecords(ctx, []model.Record{
		{Year: 2023, Exports: 3513, Imports: 3127, TradeBalance: 386},
	}))
	require.NoError(t, s.UpsertRecords(ctx, nil))

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{Year: 2022, Exports: 3554, Imports: 3093, TradeBalance: 461},
		{Year: 2023, Exports: 3513, Imports: 3127, TradeBalance: 386},
	}, records)
}

func TestStoreAsSource(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	embedded, err := dataset.Embedded().Columns(ctx)
	require.NoError(t, err)
	require.NoError(t, s.InsertColumns(ctx, embedded))

	columns, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 76, columns.Len())
	assert.Nil(t, columns.Exports[0])

	fromDB, err := dataset.LoadFrom(ctx, s)
	require.NoError(t, err)
	fromEmbedded, err := dataset.LoadFrom(ctx, dataset.Embedded())
	require.NoError(t, err)
	assert.Equal(t, fromEmbedded.Records(), fromDB.Records())

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 66)
}

func TestInsertColumnsRejectsMisaligned(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertColumns(context.Background(), dataset.Columns{
		Years:   []int{2020},
		Exports: []*float64{dataset.Value(1)},
	})
	assert.ErrorIs(t, err, dataset.ErrSchema)
}

func TestColumnsAndRecordsShareUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.InsertColumns(ctx, dataset.Columns{
		Years:        []int{1955, 1960},
		Exports:      []*float64{nil, dataset.Value(1.88)},
		Imports:      []*float64{nil, dataset.Value(1.89)},
		TradeBalance: []*float64{nil, dataset.Value(-0.01)},
	}))
	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1960}, yearsOf(records))

	require.NoError(t, s.UpsertRecords(ctx, []model.Record{{Year: 1955, Exports: 1.4, Imports: 1.7, TradeBalance: -0.3}}))
	records, err = s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1955, 1960}, yearsOf(records))

	require.NoError(t, s.InsertColumns(ctx, dataset.Columns{
		Years:        []int{1955},
		Exports:      []*float64{nil},
		Imports:      []*float64{nil},
		TradeBalance: []*float64{nil},
	}))
	records, err = s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1960}, yearsOf(records))
}

func yearsOf(records []model.Record) []int {
	years := make([]int, len(records))
	for i, record := range records {
		years[i] = record.Year
	}
	return years
}
