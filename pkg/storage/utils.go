package storage

import (
	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// filterRecords returns the records matching filter, in collection order
func filterRecords(records []domain.Record, filter domain.Filter) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if len(filter) == 0 || domain.MatchesFilter(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func indexOf(records []domain.Record, field string, value interface{}) int {
	filter := domain.Filter{field: value}
	for i, rec := range records {
		if domain.MatchesFilter(rec, filter) {
			return i
		}
	}
	return -1
}

// indexOfExact finds the first record whose field holds exactly value
func indexOfExact(records []domain.Record, field string, value interface{}) int {
	for i, rec := range records {
		if actual, ok := rec.Lookup(field); ok && domain.SameValue(actual, value) {
			return i
		}
	}
	return -1
}
