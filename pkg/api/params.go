package api

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/aggregate"
	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
)

// Filter operators accepted as "<op>.<field>" query parameters
const (
	prefixEq       = "eq"
	prefixMin      = "min"
	prefixMax      = "max"
	prefixContains = "contains"
	prefixAny      = "any"
)

// parseQuery builds a query from request parameters. Filters are read from
// dotted keys such as eq.city=Goa or min.price=1000; sort, page and page_size
// control ordering and pagination. Other undotted keys are ignored.
func parseQuery(values url.Values) (query.Query, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	q := query.New()
	for _, key := range keys {
		prefix, field, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		if field == "" {
			return q, domain.Invalid(key, "missing field name")
		}
		value := values.Get(key)

		switch prefix {
		case prefixEq:
			q = q.Where(query.Eq(field, parseScalar(value)))
		case prefixMin:
			n, err := parseNumber(key, value)
			if err != nil {
				return q, err
			}
			q = q.Where(query.Range(field, &n, nil))
		case prefixMax:
			n, err := parseNumber(key, value)
			if err != nil {
				return q, err
			}
			q = q.Where(query.Range(field, nil, &n))
		case prefixContains:
			q = q.Where(query.Contains(field, value))
		case prefixAny:
			q = q.Where(query.AnyOf(field, splitList(value)...))
		default:
			return q, domain.Invalid(key, fmt.Sprintf("unknown filter operator %q", prefix))
		}
	}

	return withPaging(q, values)
}

// withPaging applies the sort, page and page_size parameters to q
func withPaging(q query.Query, values url.Values) (query.Query, error) {
	strategy, err := query.ParseSort(values.Get("sort"))
	if err != nil {
		return q, err
	}
	page, err := parseInt("page", values.Get("page"))
	if err != nil {
		return q, err
	}
	size, err := parseInt("page_size", values.Get("page_size"))
	if err != nil {
		return q, err
	}

	q = q.SortBy(strategy).Paginate(page, size)
	return q, q.Validate()
}

// parseSummaryFields reads the comma separated sum, avg and group parameters
func parseSummaryFields(values url.Values) aggregate.Fields {
	return aggregate.Fields{
		Sum:     splitList(values.Get("sum")),
		Average: splitList(values.Get("avg")),
		Group:   splitList(values.Get("group")),
	}
}

// parseScalar converts a parameter to a number or boolean when it looks like one
func parseScalar(value string) interface{} {
	if num, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(num) && !math.IsInf(num, 0) {
		return num
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func parseNumber(key, value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, domain.Invalid(key, fmt.Sprintf("%q is not a number", value))
	}
	if math.IsNaN(n) {
		return 0, domain.Invalid(key, "cannot be NaN")
	}
	return n, nil
}

// parseInt parses an optional integer; empty means zero
func parseInt(key, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.Invalid(key, fmt.Sprintf("%q is not an integer", value))
	}
	return n, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, domain.Invalid(key, fmt.Sprintf("%q is not a boolean", value))
	}
	return b, nil
}

// splitList splits a comma separated parameter, dropping empty items
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
