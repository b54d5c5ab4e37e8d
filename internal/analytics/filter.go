// Package analytics aggregates historical records into the KPI panels and
// chart series of the analysis pages. All functions are pure.
package analytics

import (
	"errors"
	"sort"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

// ErrNoRecords is returned when a filter leaves nothing to aggregate.
var ErrNoRecords = errors.New("no records match the selection")

// Apply returns the records matching filter. Year filters drop undated rows.
func Apply(records []domain.HistoricalRecord, filter domain.AnalysisFilter) []domain.HistoricalRecord {
	years := make(map[int]struct{}, len(filter.Years))
	for _, y := range filter.Years {
		years[y] = struct{}{}
	}

	out := make([]domain.HistoricalRecord, 0, len(records))
	for _, r := range records {
		if filter.CustomerType != "" && r.CustomerType != filter.CustomerType {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.CustomerID != "" && r.CustomerID != filter.CustomerID {
			continue
		}
		if len(years) > 0 {
			if !r.Dated() {
				continue
			}
			if _, ok := years[r.Date.Year()]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ForCustomer is the history of a single customer.
func ForCustomer(records []domain.HistoricalRecord, customerID string) []domain.HistoricalRecord {
	return Apply(records, domain.AnalysisFilter{CustomerID: customerID})
}

// Options lists distinct filter values, sorted.
func Options(records []domain.HistoricalRecord) domain.FilterOptions {
	types := map[string]struct{}{}
	categories := map[string]struct{}{}
	customers := map[string]struct{}{}
	products := map[string]struct{}{}

	for _, r := range records {
		addNonEmpty(types, r.CustomerType)
		addNonEmpty(categories, r.Category)
		addNonEmpty(customers, r.CustomerID)
		addNonEmpty(products, r.ProductID)
	}

	return domain.FilterOptions{
		CustomerTypes: sortedKeys(types),
		Categories:    sortedKeys(categories),
		Customers:     sortedKeys(customers),
		Products:      sortedKeys(products),
		Years:         Years(records),
	}
}

// Years returns the distinct years of dated records in ascending order.
func Years(records []domain.HistoricalRecord) []int {
	seen := map[int]struct{}{}
	for _, r := range records {
		if r.Dated() {
			seen[r.Date.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// CustomerCount is a customer with its number of records.
type CustomerCount struct {
	CustomerID string
	Count      int
}

// TopCustomers ranks customers by record count, ties broken by id.
func TopCustomers(records []domain.HistoricalRecord, n int) []CustomerCount {
	counts := map[string]int{}
	for _, r := range records {
		if r.CustomerID != "" {
			counts[r.CustomerID]++
		}
	}

	ranked := make([]CustomerCount, 0, len(counts))
	for id, c := range counts {
		ranked = append(ranked, CustomerCount{CustomerID: id, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
