package aggregate

import (
	"testing"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
	"github.com/stretchr/testify/assert"
)

func bookings() []domain.Record {
	return []domain.Record{
		{"id": "b1", "status": "confirmed", "total_amount": 1200.0, "city": "Goa", "tags": []interface{}{"beach", "family"}},
		{"id": "b2", "status": "cancelled", "total_amount": 800.0, "city": "Goa", "tags": []interface{}{"beach"}},
		{"id": "b3", "status": "confirmed", "total_amount": "n/a", "city": "Jaipur"},
		{"id": "b4", "status": "completed", "total_amount": 2000.0, "rooms": 2},
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, 4, Count(bookings()))
	assert.Equal(t, 0, Count(nil))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 4000.0, Sum(bookings(), "total_amount"))
	assert.Equal(t, 0.0, Sum(bookings(), "missing"))
}

func TestAverage(t *testing.T) {
	assert.InDelta(t, 4000.0/3, Average(bookings(), "total_amount"), 1e-9)
	assert.Equal(t, 2.0, Average(bookings(), "rooms"))
	assert.Equal(t, 0.0, Average(bookings(), "missing"))
	assert.Equal(t, 0.0, Average(nil, "total_amount"))
}

func TestGroupCount(t *testing.T) {
	assert.Equal(t, map[string]int{"confirmed": 2, "cancelled": 1, "completed": 1}, GroupCount(bookings(), "status"))
	assert.Equal(t, map[string]int{"Goa": 2, "Jaipur": 1}, GroupCount(bookings(), "city"))
	assert.Equal(t, map[string]int{"beach": 2, "family": 1}, GroupCount(bookings(), "tags"))
	assert.Equal(t, map[string]int{"2": 1}, GroupCount(bookings(), "rooms"))
	assert.Empty(t, GroupCount(bookings(), "missing"))
}

func TestSortedGroups(t *testing.T) {
	groups := SortedGroups(map[string]int{"b": 1, "a": 1, "c": 3})
	assert.Equal(t, []Group{{"c", 3}, {"a", 1}, {"b", 1}}, groups)
}

func TestSummarize_UsesAllMatches(t *testing.T) {
	rs := query.Execute(bookings(), query.New().Paginate(1, 1))
	assert.Len(t, rs.Records, 1)

	summary := Summarize(rs, Fields{
		Sum:     []string{"total_amount"},
		Average: []string{"total_amount"},
		Group:   []string{"status"},
	})

	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 4, summary.Pages)
	assert.Equal(t, 1, summary.PageSize)
	assert.Equal(t, 4000.0, summary.Sums["total_amount"])
	assert.InDelta(t, 4000.0/3, summary.Averages["total_amount"], 1e-9)
	assert.Equal(t, []Group{{"confirmed", 2}, {"cancelled", 1}, {"completed", 1}}, summary.Groups["status"])
}

func TestSummarize_NoFields(t *testing.T) {
	summary := Summarize(query.Execute(nil, query.New()), Fields{})
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, 0, summary.Pages)
	assert.Nil(t, summary.Sums)
	assert.Nil(t, summary.Groups)
}
