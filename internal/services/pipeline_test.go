package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"puja-booking-api/internal/models"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newRecord(id int64, title, price string, minutes int) models.ServiceRecord {
	return models.ServiceRecord{
		ID:              id,
		Title:           title,
		Description:     fmt.Sprintf("<p>%s performed by experienced pandits</p>", title),
		ServiceType:     models.ServiceTypePuja,
		Price:           models.MustPrice(price),
		DurationMinutes: minutes,
		IsActive:        true,
		CreatedAt:       baseTime.Add(time.Duration(id) * time.Hour),
		UpdatedAt:       baseTime.Add(time.Duration(id) * time.Hour),
	}
}

func ids(records []models.ServiceRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func defaultSpec() models.QuerySpec {
	return models.QuerySpec{Page: 1, PageSize: models.DefaultPageSize}
}

func sampleCatalog() []models.ServiceRecord {
	astro := newRecord(3, "Kundli Reading", "1100", 45)
	astro.ServiceType = models.ServiceTypeAstrology
	astro.Description = "Detailed birth chart consultation"

	homam := newRecord(4, "Navagraha Homam", "5100", 180)
	homam.ServiceType = models.ServiceTypeHomam

	inactive := newRecord(5, "Satyanarayan Puja", "2100", 120)
	inactive.IsActive = false

	return []models.ServiceRecord{
		newRecord(1, "Ganesha Puja", "501", 60),
		newRecord(2, "Lakshmi Puja", "1500", 90),
		astro,
		homam,
		inactive,
		newRecord(6, "Rudrabhishek", "2000", 120),
	}
}

// ==========================
// Filter
// ==========================

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		spec     models.QuerySpec
		expected []int64
	}{
		{name: "no filters drops only inactive", spec: defaultSpec(), expected: []int64{1, 2, 3, 4, 6}},
		{name: "search title case-insensitive", spec: models.QuerySpec{Search: "GANESHA"}, expected: []int64{1}},
		{name: "search description", spec: models.QuerySpec{Search: "birth chart"}, expected: []int64{3}},
		{name: "search matches stripped markup only", spec: models.QuerySpec{Search: "<p>"}, expected: []int64{}},
		{name: "search on inactive record excluded", spec: models.QuerySpec{Search: "satyanarayan"}, expected: []int64{}},
		{name: "service type", spec: models.QuerySpec{ServiceType: models.ServiceTypeAstrology}, expected: []int64{3}},
		{name: "price bucket", spec: models.QuerySpec{PriceRange: "1000-2000"}, expected: []int64{2, 3}},
		{name: "top price bucket open ended", spec: models.QuerySpec{PriceRange: "2000-above"}, expected: []int64{4, 6}},
		{name: "duration bucket", spec: models.QuerySpec{DurationRange: "120-above"}, expected: []int64{4, 6}},
		{name: "filters are ANDed", spec: models.QuerySpec{Search: "puja", PriceRange: "1000-2000"}, expected: []int64{2}},
		{name: "unknown bucket matches nothing", spec: models.QuerySpec{PriceRange: "free"}, expected: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := sampleCatalog()
			for i := range catalog {
				if catalog[i].ID != 3 {
					catalog[i].DescriptionText = fmt.Sprintf("%s performed by experienced pandits", catalog[i].Title)
				}
			}
			got := ApplyFilters(catalog, tt.spec)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestApplyFilters_NeverReturnsInactive(t *testing.T) {
	catalog := sampleCatalog()
	specs := []models.QuerySpec{
		{},
		{Search: "puja"},
		{PriceRange: "2000-above"},
		{DurationRange: "120-above"},
		{ServiceType: models.ServiceTypePuja},
	}
	for _, spec := range specs {
		for _, r := range ApplyFilters(catalog, spec) {
			assert.True(t, r.IsActive, "record %d is inactive", r.ID)
		}
	}
}

func TestApplyFilters_EmptySpecLength(t *testing.T) {
	allActive := sampleCatalog()[:4]
	assert.Len(t, ApplyFilters(allActive, models.QuerySpec{}), len(allActive))

	withInactive := sampleCatalog()
	assert.Less(t, len(ApplyFilters(withInactive, models.QuerySpec{})), len(withInactive))
}

func TestApplyFilters_EmptyCatalog(t *testing.T) {
	got := ApplyFilters(nil, models.QuerySpec{Search: "puja"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyFilters_GaneshaScenario(t *testing.T) {
	catalog := []models.ServiceRecord{newRecord(1, "Ganesha Puja", "501", 60)}
	for i := 2; i <= 10; i++ {
		catalog = append(catalog, newRecord(int64(i), fmt.Sprintf("Havan %d", i), "800", 60))
	}
	for _, i := range []int{0, 4, 9} {
		catalog[i].Description = "Traditional vedic ritual"
	}

	for _, term := range []string{"ganesha", "Ganesha", "GANESHA"} {
		got := ApplyFilters(catalog, models.QuerySpec{Search: term})
		assert.Equal(t, []int64{1}, ids(got), term)
	}
}

func TestApplyFilters_PriceBoundaries(t *testing.T) {
	catalog := []models.ServiceRecord{
		newRecord(1, "At lower bound", "500.00", 30),
		newRecord(2, "At upper bound", "1000.00", 30),
		newRecord(3, "Just below upper", "999.99", 30),
		newRecord(4, "Just below lower", "499.99", 30),
	}

	got := ApplyFilters(catalog, models.QuerySpec{PriceRange: "500-1000"})
	assert.Equal(t, []int64{1, 3}, ids(got))
}

func TestApplyFilters_DurationBoundaries(t *testing.T) {
	catalog := []models.ServiceRecord{
		newRecord(1, "a", "100", 30),
		newRecord(2, "b", "100", 60),
		newRecord(3, "c", "100", 59),
	}

	got := ApplyFilters(catalog, models.QuerySpec{DurationRange: "30-60"})
	assert.Equal(t, []int64{1, 3}, ids(got))
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	catalog := sampleCatalog()
	before := ids(catalog)
	_ = ApplyFilters(catalog, models.QuerySpec{Search: "puja"})
	assert.Equal(t, before, ids(catalog))
}

// ==========================
// Sort
// ==========================

func TestApplySorting(t *testing.T) {
	catalog := []models.ServiceRecord{
		newRecord(1, "rudrabhishek", "2000", 120),
		newRecord(2, "Ganesha Puja", "501", 60),
		newRecord(3, "lakshmi Puja", "1500", 90),
		newRecord(4, "Kundli Reading", "1100.50", 45),
	}
	catalog[0].CreatedAt = baseTime.Add(4 * time.Hour)
	catalog[1].CreatedAt = baseTime.Add(1 * time.Hour)
	catalog[2].CreatedAt = baseTime.Add(3 * time.Hour)
	catalog[3].CreatedAt = baseTime.Add(2 * time.Hour)

	tests := []struct {
		name     string
		key      models.SortKey
		order    models.SortOrder
		expected []int64
	}{
		{name: "title asc ignores case", key: models.SortTitle, order: models.OrderAsc, expected: []int64{2, 4, 3, 1}},
		{name: "title desc", key: models.SortTitle, order: models.OrderDesc, expected: []int64{1, 3, 4, 2}},
		{name: "price asc", key: models.SortPrice, order: models.OrderAsc, expected: []int64{2, 4, 3, 1}},
		{name: "price desc", key: models.SortPrice, order: models.OrderDesc, expected: []int64{1, 3, 4, 2}},
		{name: "duration asc", key: models.SortDuration, order: models.OrderAsc, expected: []int64{4, 2, 3, 1}},
		{name: "created asc", key: models.SortCreatedAt, order: models.OrderAsc, expected: []int64{2, 4, 3, 1}},
		{name: "created desc", key: models.SortCreatedAt, order: models.OrderDesc, expected: []int64{1, 3, 4, 2}},
		{name: "empty order means asc", key: models.SortPrice, order: "", expected: []int64{2, 4, 3, 1}},
		{name: "no key keeps order", key: models.SortNone, order: models.OrderDesc, expected: []int64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySorting(catalog, tt.key, tt.order)
			assert.Equal(t, tt.expected, ids(got))
			assert.Equal(t, []int64{1, 2, 3, 4}, ids(catalog), "input must not be reordered")
		})
	}
}

func TestApplySorting_PriceIsNumericNotLexicographic(t *testing.T) {
	catalog := []models.ServiceRecord{
		newRecord(1, "a", "1000", 30),
		newRecord(2, "b", "900", 30),
		newRecord(3, "c", "95.5", 30),
	}
	got := ApplySorting(catalog, models.SortPrice, models.OrderAsc)
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
}

func TestApplySorting_Stable(t *testing.T) {
	catalog := []models.ServiceRecord{
		newRecord(1, "a", "500", 60),
		newRecord(2, "b", "700", 60),
		newRecord(3, "c", "500", 60),
		newRecord(4, "d", "700", 60),
		newRecord(5, "e", "500", 60),
	}

	asc := ApplySorting(catalog, models.SortPrice, models.OrderAsc)
	assert.Equal(t, []int64{1, 3, 5, 2, 4}, ids(asc))

	desc := ApplySorting(catalog, models.SortPrice, models.OrderDesc)
	assert.Equal(t, []int64{2, 4, 1, 3, 5}, ids(desc))

	byDuration := ApplySorting(catalog, models.SortDuration, models.OrderDesc)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(byDuration))
}

func TestApplySorting_DescReversesAscForDistinctKeys(t *testing.T) {
	catalog := sampleCatalog()
	for _, key := range models.SortKeys {
		asc := ApplySorting(catalog, key, models.OrderAsc)
		desc := ApplySorting(asc, key, models.OrderDesc)

		reversed := ids(asc)
		for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
			reversed[i], reversed[j] = reversed[j], reversed[i]
		}
		if key == models.SortDuration {
			// two records share 120 minutes
			continue
		}
		assert.Equal(t, reversed, ids(desc), string(key))
	}
}

func TestApplySorting_EmptyInput(t *testing.T) {
	got := ApplySorting(nil, models.SortTitle, models.OrderAsc)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ==========================
// Paginate
// ==========================

func TestApplyPagination(t *testing.T) {
	catalog := make([]models.ServiceRecord, 0, 25)
	for i := 1; i <= 25; i++ {
		catalog = append(catalog, newRecord(int64(i), fmt.Sprintf("Service %d", i), "100", 30))
	}

	tests := []struct {
		name          string
		records       []models.ServiceRecord
		page, size    int
		expectedIDs   []int64
		expectedPages int
	}{
		{name: "first page", records: catalog, page: 1, size: 10, expectedIDs: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, expectedPages: 3},
		{name: "last partial page", records: catalog, page: 3, size: 10, expectedIDs: []int64{21, 22, 23, 24, 25}, expectedPages: 3},
		{name: "exact fit", records: catalog[:20], page: 2, size: 10, expectedIDs: []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, expectedPages: 2},
		{name: "beyond last page", records: catalog, page: 4, size: 10, expectedIDs: []int64{}, expectedPages: 3},
		{name: "empty catalog", records: nil, page: 1, size: 10, expectedIDs: []int64{}, expectedPages: 0},
		{name: "size larger than catalog", records: catalog[:3], page: 1, size: 12, expectedIDs: []int64{1, 2, 3}, expectedPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPagination(tt.records, tt.page, tt.size)
			assert.Equal(t, tt.expectedIDs, ids(result.Items))
			assert.Equal(t, tt.expectedPages, result.TotalPages)
			assert.Equal(t, len(tt.records), result.TotalCount)
			assert.Equal(t, tt.page, result.Page)
			assert.Equal(t, tt.size, result.PageSize)
			assert.LessOrEqual(t, len(result.Items), tt.size)
		})
	}
}

func TestApplyPagination_PagesSumToTotal(t *testing.T) {
	for _, total := range []int{0, 1, 11, 12, 13, 47} {
		for _, size := range []int{1, 5, 12, 100} {
			catalog := make([]models.ServiceRecord, total)
			for i := range catalog {
				catalog[i] = newRecord(int64(i+1), "s", "100", 30)
			}

			first := ApplyPagination(catalog, 1, size)
			sum := 0
			for page := 1; page <= first.TotalPages; page++ {
				sum += len(ApplyPagination(catalog, page, size).Items)
			}
			assert.Equal(t, total, sum, "total=%d size=%d", total, size)
		}
	}
}

func TestApplyPagination_OutOfRangePageScenario(t *testing.T) {
	catalog := make([]models.ServiceRecord, 20)
	for i := range catalog {
		catalog[i] = newRecord(int64(i+1), "s", "100", 30)
	}

	result := ApplyPagination(catalog, 99, 12)
	assert.Empty(t, result.Items)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 20, result.TotalCount)
}

// ==========================
// Composition
// ==========================

func TestRunPipeline_FourteenRecordScenario(t *testing.T) {
	prices := []string{"1500", "500", "2000", "750", "1999.99", "1100", "501", "1000", "650", "1250", "900", "1750", "800", "1501"}
	catalog := make([]models.ServiceRecord, len(prices))
	for i, p := range prices {
		catalog[i] = newRecord(int64(i+1), fmt.Sprintf("Puja %d", i+1), p, 60)
	}

	spec := models.QuerySpec{SortBy: models.SortPrice, SortOrder: models.OrderAsc, Page: 1, PageSize: 12}
	result := RunPipeline(catalog, spec)

	require.Len(t, result.Items, 12)
	assert.Equal(t, 14, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	for i := 1; i < len(result.Items); i++ {
		assert.True(t, result.Items[i-1].Price.LessThanOrEqual(result.Items[i].Price.Decimal),
			"items[%d]=%s > items[%d]=%s", i-1, result.Items[i-1].Price, i, result.Items[i].Price)
	}

	second := RunPipeline(catalog, models.QuerySpec{SortBy: models.SortPrice, Page: 2, PageSize: 12})
	assert.Len(t, second.Items, 2)
}

func TestRunPipeline_Idempotent(t *testing.T) {
	catalog := sampleCatalog()
	spec := models.QuerySpec{Search: "puja", SortBy: models.SortTitle, SortOrder: models.OrderDesc, Page: 1, PageSize: 2}

	first := RunPipeline(catalog, spec)
	second := RunPipeline(catalog, spec)
	assert.Equal(t, first, second)
	assert.Equal(t, ids(sampleCatalog()), ids(catalog))
}
