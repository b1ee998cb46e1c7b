package services

import (
	"sort"
	"strings"

	"puja-booking-api/internal/models"
)

// RunPipeline applies filter, sort and paginate in that fixed order.
// It is pure: the same records and spec always give the same page.
func RunPipeline(records []models.ServiceRecord, spec models.QuerySpec) models.ResultPage {
	filtered := ApplyFilters(records, spec)
	sorted := ApplySorting(filtered, spec.SortBy, spec.SortOrder)
	return ApplyPagination(sorted, spec.Page, spec.PageSize)
}

// ApplyFilters keeps active records matching every filter set on spec,
// in their original relative order. Unknown bucket ids match nothing.
func ApplyFilters(records []models.ServiceRecord, spec models.QuerySpec) []models.ServiceRecord {
	term := strings.ToLower(strings.TrimSpace(spec.Search))

	var priceBucket *models.PriceBucket
	if spec.PriceRange != "" {
		b, ok := models.LookupPriceBucket(spec.PriceRange)
		if !ok {
			return []models.ServiceRecord{}
		}
		priceBucket = &b
	}

	var durationBucket *models.DurationBucket
	if spec.DurationRange != "" {
		b, ok := models.LookupDurationBucket(spec.DurationRange)
		if !ok {
			return []models.ServiceRecord{}
		}
		durationBucket = &b
	}

	filtered := make([]models.ServiceRecord, 0, len(records))
	for _, record := range records {
		// Inactive services are never shown
		if !record.IsActive {
			continue
		}

		if term != "" && !matchesSearch(record, term) {
			continue
		}

		if spec.ServiceType != "" && record.ServiceType != spec.ServiceType {
			continue
		}

		if priceBucket != nil && !priceBucket.Contains(record.Price) {
			continue
		}

		if durationBucket != nil && !durationBucket.Contains(record.DurationMinutes) {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered
}

func matchesSearch(record models.ServiceRecord, term string) bool {
	return strings.Contains(strings.ToLower(record.Title), term) ||
		strings.Contains(strings.ToLower(record.SearchableDescription()), term)
}

// ApplySorting returns a sorted copy. Equal keys keep their relative order in
// both directions. An empty key returns the copy unsorted.
func ApplySorting(records []models.ServiceRecord, key models.SortKey, order models.SortOrder) []models.ServiceRecord {
	sorted := make([]models.ServiceRecord, len(records))
	copy(sorted, records)

	compare := comparator(key)
	if compare == nil {
		return sorted
	}

	desc := order == models.OrderDesc
	sort.SliceStable(sorted, func(i, j int) bool {
		if desc {
			return compare(sorted[j], sorted[i]) < 0
		}
		return compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}

func comparator(key models.SortKey) func(a, b models.ServiceRecord) int {
	switch key {
	case models.SortTitle:
		return func(a, b models.ServiceRecord) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case models.SortPrice:
		return func(a, b models.ServiceRecord) int {
			return a.Price.Cmp(b.Price.Decimal)
		}
	case models.SortDuration:
		return func(a, b models.ServiceRecord) int {
			return a.DurationMinutes - b.DurationMinutes
		}
	case models.SortCreatedAt:
		return func(a, b models.ServiceRecord) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		return nil
	}
}

// ApplyPagination windows records to a 1-indexed page. A page past the end
// yields no items but keeps the real totals.
func ApplyPagination(records []models.ServiceRecord, page, pageSize int) models.ResultPage {
	total := len(records)
	result := models.ResultPage{
		Items:      []models.ServiceRecord{},
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}
	if pageSize <= 0 || total == 0 {
		return result
	}

	result.TotalPages = (total + pageSize - 1) / pageSize
	if page < 1 {
		return result
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]models.ServiceRecord, end-start)
	copy(items, records[start:end])
	result.Items = items
	return result
}
