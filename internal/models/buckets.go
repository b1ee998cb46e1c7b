package models

import "github.com/shopspring/decimal"

// PriceBucket is a half-open price range [Min, Max). A nil Max means no upper bound.
type PriceBucket struct {
	ID    string           `json:"id"`
	Label string           `json:"label"`
	Min   decimal.Decimal  `json:"min"`
	Max   *decimal.Decimal `json:"max,omitempty"`
}

func (b PriceBucket) Contains(p Price) bool {
	if p.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || p.LessThan(*b.Max)
}

// DurationBucket is a half-open range of minutes [Min, Max). Max == 0 means no upper bound.
type DurationBucket struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max,omitempty"`
}

func (b DurationBucket) Contains(minutes int) bool {
	if minutes < b.Min {
		return false
	}
	return b.Max == 0 || minutes < b.Max
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var PriceBuckets = []PriceBucket{
	{ID: "under-500", Label: "Under ₹500", Min: decimal.Zero, Max: decimalPtr(500)},
	{ID: "500-1000", Label: "₹500 - ₹1000", Min: decimal.NewFromInt(500), Max: decimalPtr(1000)},
	{ID: "1000-2000", Label: "₹1000 - ₹2000", Min: decimal.NewFromInt(1000), Max: decimalPtr(2000)},
	{ID: "2000-above", Label: "₹2000 and above", Min: decimal.NewFromInt(2000)},
}

var DurationBuckets = []DurationBucket{
	{ID: "under-30", Label: "Under 30 min", Min: 0, Max: 30},
	{ID: "30-60", Label: "30 - 60 min", Min: 30, Max: 60},
	{ID: "60-120", Label: "1 - 2 hours", Min: 60, Max: 120},
	{ID: "120-above", Label: "2 hours and above", Min: 120},
}

func LookupPriceBucket(id string) (PriceBucket, bool) {
	for _, b := range PriceBuckets {
		if b.ID == id {
			return b, true
		}
	}
	return PriceBucket{}, false
}

func LookupDurationBucket(id string) (DurationBucket, bool) {
	for _, b := range DurationBuckets {
		if b.ID == id {
			return b, true
		}
	}
	return DurationBucket{}, false
}
