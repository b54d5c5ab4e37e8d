package domain

import "time"

// HistoricalRecord is one typed row of demand history. Records are produced by
// ingestion and never modified afterwards.
type HistoricalRecord struct {
	Date         time.Time `json:"date" db:"record_date"`
	CustomerID   string    `json:"customer_id" db:"customer_id"`
	CustomerType string    `json:"customer_type" db:"customer_type"`
	ProductID    string    `json:"product_id" db:"product_id"`
	Category     string    `json:"category,omitempty" db:"category"`
	ActualQty    float64   `json:"actual_qty" db:"actual_qty"`
	ForecastQty  float64   `json:"forecast_qty" db:"forecast_qty"`
	UnitPrice    float64   `json:"unit_price,omitempty" db:"unit_price"`
	HasPrice     bool      `json:"has_price" db:"has_price"`
}

// Dated reports whether the record carries a parseable date.
func (r HistoricalRecord) Dated() bool {
	return !r.Date.IsZero()
}

// Schema records which source columns were mapped onto HistoricalRecord fields.
type Schema struct {
	Columns            []string `json:"columns"`
	DateColumn         string   `json:"date_column"`
	CustomerColumn     string   `json:"customer_column"`
	CustomerTypeColumn string   `json:"customer_type_column"`
	ProductColumn      string   `json:"product_column,omitempty"`
	CategoryColumn     string   `json:"category_column,omitempty"`
	PriceColumn        string   `json:"price_column,omitempty"`
	ActualColumn       string   `json:"actual_column"`
	ForecastColumn     string   `json:"forecast_column"`
}

// Dataset is the in-memory table a session works on.
type Dataset struct {
	Name        string             `json:"name"`
	Source      string             `json:"source"`
	Schema      Schema             `json:"schema"`
	Records     []HistoricalRecord `json:"-"`
	SkippedRows int                `json:"skipped_rows"`
	UndatedRows int                `json:"undated_rows"`
	LoadedAt    time.Time          `json:"loaded_at"`
}

// DatasetMeta is the summary of a dataset exposed to clients.
type DatasetMeta struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Columns     []string  `json:"columns"`
	RowCount    int       `json:"row_count"`
	SkippedRows int       `json:"skipped_rows"`
	UndatedRows int       `json:"undated_rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

func (d *Dataset) Meta() DatasetMeta {
	return DatasetMeta{
		Name:        d.Name,
		Source:      d.Source,
		Columns:     d.Schema.Columns,
		RowCount:    len(d.Records),
		SkippedRows: d.SkippedRows,
		UndatedRows: d.UndatedRows,
		LoadedAt:    d.LoadedAt,
	}
}

// Len returns the record count; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// DatasetInfo describes a dataset stored in the shared library.
type DatasetInfo struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Source    string    `json:"source" db:"source"`
	RowCount  int       `json:"row_count" db:"row_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
