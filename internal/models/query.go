package models

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortTitle     SortKey = "title"
	SortPrice     SortKey = "price"
	SortDuration  SortKey = "duration"
	SortCreatedAt SortKey = "created_at"
)

var SortKeys = []SortKey{SortTitle, SortPrice, SortDuration, SortCreatedAt}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// QuerySpec describes one complete catalog view. A new spec is built for
// every filter, sort or page change.
type QuerySpec struct {
	Search        string      `json:"search,omitempty"`
	ServiceType   ServiceType `json:"service_type,omitempty"`
	PriceRange    string      `json:"price_range,omitempty"`
	DurationRange string      `json:"duration_range,omitempty"`
	SortBy        SortKey     `json:"sort_by,omitempty"`
	SortOrder     SortOrder   `json:"sort_order,omitempty"`
	Page          int         `json:"page"`
	PageSize      int         `json:"page_size"`
}

// Validate rejects values outside the fixed vocabulary. An empty SortOrder
// is accepted and means ascending.
func (q QuerySpec) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", q.Page)
	}
	if q.PageSize < 1 {
		return fmt.Errorf("page size must be > 0, got %d", q.PageSize)
	}
	if q.ServiceType != "" && !q.ServiceType.Valid() {
		return fmt.Errorf("invalid service type: %s", q.ServiceType)
	}
	if q.PriceRange != "" {
		if _, ok := LookupPriceBucket(q.PriceRange); !ok {
			return fmt.Errorf("invalid price range: %s", q.PriceRange)
		}
	}
	if q.DurationRange != "" {
		if _, ok := LookupDurationBucket(q.DurationRange); !ok {
			return fmt.Errorf("invalid duration range: %s", q.DurationRange)
		}
	}
	if q.SortBy != SortNone {
		valid := false
		for _, k := range SortKeys {
			if k == q.SortBy {
				valid = true
				break
			}
		}
		if !valid {
			keys := make([]string, len(SortKeys))
			for i, k := range SortKeys {
				keys[i] = string(k)
			}
			return fmt.Errorf("invalid sort field: %s. Valid fields: %s", q.SortBy, strings.Join(keys, ", "))
		}
	}
	if q.SortOrder != "" && q.SortOrder != OrderAsc && q.SortOrder != OrderDesc {
		return fmt.Errorf("invalid sort order: %s. Valid orders: asc, desc", q.SortOrder)
	}
	return nil
}

// ResultPage is one window of the filtered, sorted catalog.
type ResultPage struct {
	Items      []ServiceRecord `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int             `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}

// SearchResponse is the API envelope around a ResultPage.
type SearchResponse struct {
	ResultPage
	Query          QuerySpec `json:"query"`
	CatalogVersion uint64    `json:"catalog_version"`
	Cached         bool      `json:"cached"`
	Duration       string    `json:"duration"`
}

// FilterOptions lists the fixed filter vocabulary for the UI.
type FilterOptions struct {
	ServiceTypes    []ServiceType    `json:"service_types"`
	PriceBuckets    []PriceBucket    `json:"price_buckets"`
	DurationBuckets []DurationBucket `json:"duration_buckets"`
	SortKeys        []SortKey        `json:"sort_keys"`
	SortOrders      []SortOrder      `json:"sort_orders"`
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		ServiceTypes:    ServiceTypes,
		PriceBuckets:    PriceBuckets,
		DurationBuckets: DurationBuckets,
		SortKeys:        SortKeys,
		SortOrders:      []SortOrder{OrderAsc, OrderDesc},
	}
}
