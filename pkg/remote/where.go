package remote

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/goccy/go-json"
)

// whereClause accumulates AND-ed equality conditions over the jsonb data column
// with positional parameters.
type whereClause struct {
	conditions []string
	args       []interface{}
}

// newWhere starts a clause after the given leading parameters, so the first
// condition parameter is $len(args)+1
func newWhere(args ...interface{}) *whereClause {
	return &whereClause{args: append([]interface{}{}, args...)}
}

func (w *whereClause) param(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// eq adds field = value. The id column compares exactly; data fields compare
// their text form case-insensitively. Dotted fields address nested objects.
func (w *whereClause) eq(field string, value interface{}) *whereClause {
	if field == domain.FieldID {
		w.conditions = append(w.conditions, "id = "+w.param(domain.Stringify(value)))
		return w
	}
	path := w.param(strings.Split(field, "."))
	text := w.param(domain.Stringify(value))
	w.conditions = append(w.conditions, fmt.Sprintf("lower(data #>> %s::text[]) = lower(%s)", path, text))
	return w
}

// same adds field = value compared as jsonb, so strings match case-sensitively
// and a string never matches a number
func (w *whereClause) same(field string, value interface{}) (*whereClause, error) {
	if field == domain.FieldID {
		return w.eq(field, value), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}
	path := w.param(strings.Split(field, "."))
	expected := w.param(string(data))
	w.conditions = append(w.conditions, fmt.Sprintf("data #> %s::text[] = %s::jsonb", path, expected))
	return w, nil
}

// filter adds every entry of f, in field name order so generated SQL is stable
func (w *whereClause) filter(f domain.Filter) *whereClause {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		w.eq(field, f[field])
	}
	return w
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}
