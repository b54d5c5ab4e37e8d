package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRowKeepsUndatedRecords(t *testing.T) {
	undated := domain.HistoricalRecord{CustomerID: "C1", CustomerType: "TOP", ProductID: "ALL", ActualQty: 5, ForecastQty: 4}
	row := toRecordRow(undated)
	assert.False(t, row.Date.Valid)
	assert.False(t, row.toDomain().Dated())

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dated := undated
	dated.Date = day
	row = toRecordRow(dated)
	assert.True(t, row.Date.Valid)
	assert.Equal(t, day, row.toDomain().Date)
}

func TestDatasetRowToDomain(t *testing.T) {
	head := datasetRow{
		ID:         7,
		Name:       "demo",
		Source:     "file:demo.csv",
		SchemaJSON: []byte(`{"columns":["Date","Customer_ID"],"date_column":"Date"}`),
		Skipped:    2,
	}
	ds, err := head.toDomain([]recordRow{{CustomerID: "C1", ActualQty: 3}})
	require.NoError(t, err)
	assert.Equal(t, "library:file:demo.csv", ds.Source)
	assert.Equal(t, "Date", ds.Schema.DateColumn)
	assert.Equal(t, 2, ds.SkippedRows)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "C1", ds.Records[0].CustomerID)

	head.SchemaJSON = []byte("{")
	_, err = head.toDomain(nil)
	assert.Error(t, err)
}

// Runs against a real database when TEST_DATABASE_DSN is set.
func TestDatasetRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	db := FromSQL(sqlDB, "pgx")
	defer db.Close()

	ctx := context.Background()
	repo := NewDatasetRepository(db)
	require.NoError(t, repo.Migrate(ctx))

	ds := &domain.Dataset{
		Name:   "roundtrip-test",
		Source: "file:test.csv",
		Schema: domain.Schema{Columns: []string{"Date"}},
		Records: []domain.HistoricalRecord{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CustomerID: "C1", CustomerType: "TOP", ProductID: "P1", ActualQty: 10, ForecastQty: 8},
			{CustomerID: "C2", CustomerType: "RETAIL", ProductID: "P1", ActualQty: 3, ForecastQty: 4},
		},
	}
	_, err = repo.SaveDataset(ctx, ds)
	require.NoError(t, err)

	loaded, err := repo.LoadDataset(ctx, "roundtrip-test")
	require.NoError(t, err)
	require.Len(t, loaded.Records, 2)
	assert.True(t, loaded.Records[0].Dated())
	assert.False(t, loaded.Records[1].Dated())

	infos, err := repo.ListDatasets(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, infos)

	_, err = repo.LoadDataset(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}
