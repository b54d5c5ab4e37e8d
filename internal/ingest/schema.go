// Package ingest turns CSV and XLSX uploads into typed datasets. Column
// mapping happens once per file; everything downstream works on
// domain.HistoricalRecord.
package ingest

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

const (
	ColDate         = "Date"
	ColCustomerType = "Customer_Type"
	ColActual       = "Actual_Qty"
	ColForecast     = "Forecast_Qty"
	ColCategory     = "Category"
	ColPrice        = "Price"
)

// DefaultProductID is assigned when a file carries no product column.
const DefaultProductID = "ALL"

var (
	requiredColumns    = []string{ColDate, ColCustomerType, ColActual, ColForecast}
	customerCandidates = []string{"Customer_ID", "Customer_Name", "CustomerCode", "Customer"}
	productCandidates  = []string{"SKU_ID", "Product_ID", "SKU", "Item_Code", "Product", "Product Name"}
	categoryCandidates = []string{ColCategory, "Product_Category"}
	priceCandidates    = []string{ColPrice, "Unit_Price"}
)

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// columnMap holds header indexes for each mapped field; -1 when absent.
type columnMap struct {
	date, customer, customerType, product, category, price, actual, forecast int
}

// DetectSchema maps a header row onto the record fields.
func DetectSchema(header []string) (domain.Schema, error) {
	_, schema, err := mapColumns(header)
	return schema, err
}

func mapColumns(header []string) (columnMap, domain.Schema, error) {
	cleaned := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cleaned[i] = name
		key := strings.ToLower(name)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	find := func(candidates ...string) int {
		for _, c := range candidates {
			if i, ok := index[strings.ToLower(c)]; ok {
				return i
			}
		}
		return -1
	}

	var missing []string
	for _, col := range requiredColumns {
		if find(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return columnMap{}, domain.Schema{}, &MissingColumnsError{Missing: missing}
	}

	cm := columnMap{
		date:         find(ColDate),
		customerType: find(ColCustomerType),
		actual:       find(ColActual),
		forecast:     find(ColForecast),
		customer:     find(customerCandidates...),
		product:      find(productCandidates...),
		category:     find(categoryCandidates...),
		price:        find(priceCandidates...),
	}
	if cm.customer < 0 {
		cm.customer = cm.customerType
	}

	name := func(i int) string {
		if i < 0 {
			return ""
		}
		return cleaned[i]
	}

	schema := domain.Schema{
		Columns:            cleaned,
		DateColumn:         name(cm.date),
		CustomerColumn:     name(cm.customer),
		CustomerTypeColumn: name(cm.customerType),
		ProductColumn:      name(cm.product),
		CategoryColumn:     name(cm.category),
		PriceColumn:        name(cm.price),
		ActualColumn:       name(cm.actual),
		ForecastColumn:     name(cm.forecast),
	}
	return cm, schema, nil
}
