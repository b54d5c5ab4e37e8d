package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/jmoiron/sqlx"
)

// ErrDatasetNotFound is returned when no library dataset has the requested name.
var ErrDatasetNotFound = errors.New("dataset not found")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS datasets (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	source      TEXT NOT NULL,
	schema_json JSONB NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	undated     INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS dataset_records (
	dataset_id    BIGINT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	row_no        INTEGER NOT NULL,
	record_date   DATE,
	customer_id   TEXT NOT NULL,
	customer_type TEXT NOT NULL,
	product_id    TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	actual_qty    DOUBLE PRECISION NOT NULL,
	forecast_qty  DOUBLE PRECISION NOT NULL,
	unit_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
	has_price     BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (dataset_id, row_no)
);`

type DatasetRepository struct {
	db *DB
}

func NewDatasetRepository(db *DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Migrate creates the library tables when missing.
func (r *DatasetRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to migrate dataset tables: %w", err)
	}
	return nil
}

// SaveDataset stores ds under its name, replacing any dataset with the same name.
func (r *DatasetRepository) SaveDataset(ctx context.Context, ds *domain.Dataset) (int64, error) {
	schemaJSON, err := json.Marshal(ds.Schema)
	if err != nil {
		return 0, fmt.Errorf("encode schema: %w", err)
	}

	var id int64
	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = $1`, ds.Name); err != nil {
			return fmt.Errorf("failed to replace dataset: %w", err)
		}

		query := `
			INSERT INTO datasets (name, source, schema_json, row_count, skipped, undated, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query,
			ds.Name, ds.Source, schemaJSON, len(ds.Records), ds.SkippedRows, ds.UndatedRows,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dataset_records (
				dataset_id, row_no, record_date, customer_id, customer_type,
				product_id, category, actual_qty, forecast_qty, unit_price, has_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, rec := range ds.Records {
			row := toRecordRow(rec)
			if _, err := stmt.ExecContext(ctx,
				id, i, row.Date, row.CustomerID, row.CustomerType,
				row.ProductID, row.Category, row.ActualQty, row.ForecastQty, row.UnitPrice, row.HasPrice,
			); err != nil {
				return fmt.Errorf("failed to insert record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListDatasets returns library datasets, newest first.
func (r *DatasetRepository) ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	infos := []domain.DatasetInfo{}
	query := `SELECT id, name, source, row_count, created_at FROM datasets ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &infos, query); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return infos, nil
}

// LoadDataset reads a full dataset by name.
func (r *DatasetRepository) LoadDataset(ctx context.Context, name string) (*domain.Dataset, error) {
	var head datasetRow
	err := r.db.GetContext(ctx, &head, `
		SELECT id, name, source, schema_json, skipped, undated
		FROM datasets WHERE name = $1
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", name, err)
	}

	var rows []recordRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT record_date, customer_id, customer_type, product_id, category,
			actual_qty, forecast_qty, unit_price, has_price
		FROM dataset_records WHERE dataset_id = $1 ORDER BY row_no
	`, head.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of %s: %w", name, err)
	}

	return head.toDomain(rows)
}

type datasetRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Source     string `db:"source"`
	SchemaJSON []byte `db:"schema_json"`
	Skipped    int    `db:"skipped"`
	Undated    int    `db:"undated"`
}

func (d datasetRow) toDomain(rows []recordRow) (*domain.Dataset, error) {
	var schema domain.Schema
	if err := json.Unmarshal(d.SchemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("decode schema of %s: %w", d.Name, err)
	}

	records := make([]domain.HistoricalRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toDomain()
	}

	return &domain.Dataset{
		Name:        d.Name,
		Source:      "library:" + d.Source,
		Schema:      schema,
		Records:     records,
		SkippedRows: d.Skipped,
		UndatedRows: d.Undated,
		LoadedAt:    time.Now(),
	}, nil
}

// recordRow mirrors dataset_records; undated records store a NULL date.
type recordRow struct {
	Date         sql.NullTime `db:"record_date"`
	CustomerID   string       `db:"customer_id"`
	CustomerType string       `db:"customer_type"`
	ProductID    string       `db:"product_id"`
	Category     string       `db:"category"`
	ActualQty    float64      `db:"actual_qty"`
	ForecastQty  float64      `db:"forecast_qty"`
	UnitPrice    float64      `db:"unit_price"`
	HasPrice     bool         `db:"has_price"`
}

func toRecordRow(r domain.HistoricalRecord) recordRow {
	return recordRow{
		Date:         sql.NullTime{Time: r.Date, Valid: r.Dated()},
		CustomerID:   r.CustomerID,
		CustomerType: r.CustomerType,
		ProductID:    r.ProductID,
		Category:     r.Category,
		ActualQty:    r.ActualQty,
		ForecastQty:  r.ForecastQty,
		UnitPrice:    r.UnitPrice,
		HasPrice:     r.HasPrice,
	}
}

func (r recordRow) toDomain() domain.HistoricalRecord {
	rec := domain.HistoricalRecord{
		CustomerID:   r.CustomerID,
		CustomerType: r.CustomerType,
		ProductID:    r.ProductID,
		Category:     r.Category,
		ActualQty:    r.ActualQty,
		ForecastQty:  r.ForecastQty,
		UnitPrice:    r.UnitPrice,
		HasPrice:     r.HasPrice,
	}
	if r.Date.Valid {
		rec.Date = r.Date.Time.UTC()
	}
	return rec
}
