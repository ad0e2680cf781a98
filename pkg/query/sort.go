package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// SortStrategy is the closed set of orderings a query can request
type SortStrategy string

const (
	SortNone                 SortStrategy = "none"
	SortPriceAscending       SortStrategy = "price-ascending"
	SortPriceDescending      SortStrategy = "price-descending"
	SortRatingDescending     SortStrategy = "rating-descending"
	SortPopularityDescending SortStrategy = "popularity-descending"
	SortRecommended          SortStrategy = "recommended"
)

// Recommended score weights
const (
	weightRating        = 0.4
	weightSentiment     = 0.3
	weightAffordability = 0.3
	affordabilityScale  = 5.0
)

var strategies = []SortStrategy{
	SortNone,
	SortPriceAscending,
	SortPriceDescending,
	SortRatingDescending,
	SortPopularityDescending,
	SortRecommended,
}

// Strategies lists every supported strategy
func Strategies() []SortStrategy {
	return append([]SortStrategy(nil), strategies...)
}

// ParseSort resolves a strategy name. An empty name means collection order.
func ParseSort(name string) (SortStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SortNone, nil
	}
	for _, s := range strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", domain.Invalid("sort", fmt.Sprintf("unknown strategy %q", name))
}

// sortKey extracts the value a strategy orders by; ok is false when the record
// lacks it.
type sortKey func(rec domain.Record) (float64, bool)

// Sort orders records in place. The sort is stable, so ties keep collection
// order, and records lacking the sort key go last in collection order.
func Sort(records []domain.Record, strategy SortStrategy) {
	key, descending := keyFor(strategy, records)
	if key == nil {
		return
	}

	type entry struct {
		rec   domain.Record
		value float64
		ok    bool
	}
	entries := make([]entry, len(records))
	for i, rec := range records {
		v, ok := key(rec)
		entries[i] = entry{rec: rec, value: v, ok: ok}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		if descending {
			return a.value > b.value
		}
		return a.value < b.value
	})

	for i, e := range entries {
		records[i] = e.rec
	}
}

func keyFor(strategy SortStrategy, records []domain.Record) (sortKey, bool) {
	switch strategy {
	case SortPriceAscending:
		return domain.EffectivePrice, false
	case SortPriceDescending:
		return domain.EffectivePrice, true
	case SortRatingDescending:
		return numberKey(domain.HotelRating), true
	case SortPopularityDescending:
		return numberKey(domain.HotelReviewCount), true
	case SortRecommended:
		return recommendedKey(records), true
	default:
		return nil, false
	}
}

func numberKey(field string) sortKey {
	return func(rec domain.Record) (float64, bool) {
		return rec.Number(field)
	}
}

// recommendedKey blends rating, sentiment and affordability relative to the most
// expensive record in the match set. Missing components count as zero.
func recommendedKey(records []domain.Record) sortKey {
	maxPrice := 0.0
	for _, rec := range records {
		if p, ok := domain.EffectivePrice(rec); ok && p > maxPrice {
			maxPrice = p
		}
	}
	return func(rec domain.Record) (float64, bool) {
		return RecommendedScore(rec, maxPrice), true
	}
}

// RecommendedScore computes rating*0.4 + sentiment*0.3 + affordability*0.3 where
// affordability is 5 * (1 - price/maxPrice)
func RecommendedScore(rec domain.Record, maxPrice float64) float64 {
	rating, _ := rec.Number(domain.HotelRating)
	sentiment, _ := rec.Number(domain.HotelSentiment)

	affordability := 0.0
	if price, ok := domain.EffectivePrice(rec); ok && maxPrice > 0 {
		affordability = affordabilityScale * (1 - price/maxPrice)
	}
	return rating*weightRating + sentiment*weightSentiment + affordability*weightAffordability
}
