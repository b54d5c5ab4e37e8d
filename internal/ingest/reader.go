package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("file has no header row")
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
}

// Read dispatches on the file extension of name.
func Read(r io.Reader, name string) (*domain.Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return ReadCSV(r, name)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// ReadCSV parses a comma separated file with a header row.
func ReadCSV(r io.Reader, name string) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return FromRows(name, rows)
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader, name string) (*domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", name)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var table [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", name, err)
		}
		table = append(table, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", name, err)
	}

	return FromRows(name, table)
}

// FromRows maps a header plus data rows into a dataset. Rows with unreadable
// or negative quantities are skipped; unreadable dates keep the row undated.
func FromRows(name string, rows [][]string) (*domain.Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	cm, schema, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{
		Name:     name,
		Schema:   schema,
		Records:  make([]domain.HistoricalRecord, 0, len(rows)-1),
		LoadedAt: time.Now().UTC(),
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		record, ok := parseRow(cm, row)
		if !ok {
			ds.SkippedRows++
			continue
		}
		if !record.Dated() {
			ds.UndatedRows++
		}
		ds.Records = append(ds.Records, record)
	}

	log.Debug().
		Str("dataset", name).
		Int("rows", len(ds.Records)).
		Int("skipped", ds.SkippedRows).
		Int("undated", ds.UndatedRows).
		Msg("dataset ingested")

	return ds, nil
}

func parseRow(cm columnMap, row []string) (domain.HistoricalRecord, bool) {
	actual, ok := parseQuantity(cell(row, cm.actual))
	if !ok {
		return domain.HistoricalRecord{}, false
	}
	forecast, ok := parseQuantity(cell(row, cm.forecast))
	if !ok {
		return domain.HistoricalRecord{}, false
	}

	record := domain.HistoricalRecord{
		Date:         ParseDate(cell(row, cm.date)),
		CustomerID:   cell(row, cm.customer),
		CustomerType: cell(row, cm.customerType),
		ProductID:    cell(row, cm.product),
		Category:     cell(row, cm.category),
		ActualQty:    actual,
		ForecastQty:  forecast,
	}
	if record.ProductID == "" {
		record.ProductID = DefaultProductID
	}

	if raw := cell(row, cm.price); raw != "" {
		price, ok := parseQuantity(raw)
		if !ok {
			return domain.HistoricalRecord{}, false
		}
		record.UnitPrice = price
		record.HasPrice = true
	}

	return record, true
}

// ParseDate tries the accepted layouts and returns the zero time on failure.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseQuantity(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
