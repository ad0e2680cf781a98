// Package aggregate derives display summaries from query results: counts, sums,
// averages and per-value tallies.
package aggregate

import (
	"sort"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
)

// Count returns the number of records
func Count(records []domain.Record) int {
	return len(records)
}

// Sum adds the numeric values of field. Records without a numeric value are skipped.
func Sum(records []domain.Record, field string) float64 {
	total := 0.0
	for _, rec := range records {
		if n, ok := rec.Number(field); ok {
			total += n
		}
	}
	return total
}

// Average returns the mean of field over records holding a numeric value, or 0
func Average(records []domain.Record, field string) float64 {
	total, n := 0.0, 0
	for _, rec := range records {
		if v, ok := rec.Number(field); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// GroupCount tallies the values of field. Array fields count each element;
// scalars count by their string form; records without the field are skipped.
func GroupCount(records []domain.Record, field string) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		v, ok := rec.Lookup(field)
		if !ok || v == nil {
			continue
		}
		if items, ok := domain.StringSlice(v); ok {
			for _, item := range items {
				counts[item]++
			}
			continue
		}
		counts[domain.Stringify(v)]++
	}
	return counts
}

// Group is one entry of a sorted group count
type Group struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SortedGroups orders a group count by descending count, then value
func SortedGroups(counts map[string]int) []Group {
	groups := make([]Group, 0, len(counts))
	for value, count := range counts {
		groups = append(groups, Group{Value: value, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Value < groups[j].Value
	})
	return groups
}

// Fields selects the fields a summary aggregates
type Fields struct {
	Sum     []string
	Average []string
	Group   []string
}

// Summary is the aggregate view over every match of a query
type Summary struct {
	Count    int                `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Pages    int                `json:"pages"`
	Sums     map[string]float64 `json:"sums,omitempty"`
	Averages map[string]float64 `json:"averages,omitempty"`
	Groups   map[string][]Group `json:"groups,omitempty"`
}

// Summarize aggregates the full match set of rs according to fields
func Summarize(rs query.ResultSet, fields Fields) Summary {
	matched := rs.Matched()
	summary := Summary{
		Count:    Count(matched),
		Page:     rs.Page,
		PageSize: rs.PageSize,
		Pages:    pages(rs.Total, rs.PageSize),
	}

	if len(fields.Sum) > 0 {
		summary.Sums = make(map[string]float64, len(fields.Sum))
		for _, field := range fields.Sum {
			summary.Sums[field] = Sum(matched, field)
		}
	}
	if len(fields.Average) > 0 {
		summary.Averages = make(map[string]float64, len(fields.Average))
		for _, field := range fields.Average {
			summary.Averages[field] = Average(matched, field)
		}
	}
	if len(fields.Group) > 0 {
		summary.Groups = make(map[string][]Group, len(fields.Group))
		for _, field := range fields.Group {
			summary.Groups[field] = SortedGroups(GroupCount(matched, field))
		}
	}
	return summary
}

func pages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
