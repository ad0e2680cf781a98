package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// Operator names the comparison a predicate applies
type Operator string

const (
	OpEq       Operator = "eq"
	OpRange    Operator = "range"
	OpContains Operator = "contains"
	OpAnyOf    Operator = "any"
)

// Predicate is one filter condition over a record field. Dotted fields reach
// into nested objects. A record lacking the field never matches.
type Predicate struct {
	Field  string
	Op     Operator
	Value  interface{}
	Min    *float64
	Max    *float64
	Values []string
}

// Eq matches records whose field equals value. Strings compare
// case-insensitively and numbers across numeric types.
func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// Range matches numeric fields within [min, max]. A nil bound is open.
func Range(field string, min, max *float64) Predicate {
	return Predicate{Field: field, Op: OpRange, Min: min, Max: max}
}

// AtLeast matches numeric fields greater than or equal to min
func AtLeast(field string, min float64) Predicate {
	return Range(field, &min, nil)
}

// Contains matches string fields containing substr, ignoring case. On string
// array fields any element may contain it.
func Contains(field, substr string) Predicate {
	return Predicate{Field: field, Op: OpContains, Value: substr}
}

// AnyOf matches records whose field shares at least one value with values.
// Array fields intersect; scalar fields must equal one of the values.
func AnyOf(field string, values ...string) Predicate {
	return Predicate{Field: field, Op: OpAnyOf, Values: values}
}

// Match reports whether rec satisfies the predicate
func (p Predicate) Match(rec domain.Record) bool {
	actual, ok := rec.Lookup(p.Field)
	if !ok || actual == nil {
		return false
	}

	switch p.Op {
	case OpEq:
		return domain.ValuesMatch(actual, p.Value)
	case OpRange:
		n, ok := domain.ToFloat64(actual)
		if !ok {
			return false
		}
		if p.Min != nil && n < *p.Min {
			return false
		}
		if p.Max != nil && n > *p.Max {
			return false
		}
		return true
	case OpContains:
		needle := strings.ToLower(domain.Stringify(p.Value))
		if items, ok := domain.StringSlice(actual); ok {
			for _, item := range items {
				if strings.Contains(strings.ToLower(item), needle) {
					return true
				}
			}
			return false
		}
		s, ok := actual.(string)
		return ok && strings.Contains(strings.ToLower(s), needle)
	case OpAnyOf:
		items, ok := domain.StringSlice(actual)
		if !ok {
			items = []string{domain.Stringify(actual)}
		}
		for _, want := range p.Values {
			for _, item := range items {
				if strings.EqualFold(item, want) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// Validate rejects predicates that cannot match anything meaningful
func (p Predicate) Validate() error {
	if p.Field == "" {
		return domain.Invalid("field", "filter field cannot be empty")
	}
	switch p.Op {
	case OpEq, OpContains:
		return nil
	case OpRange:
		if (p.Min != nil && math.IsNaN(*p.Min)) || (p.Max != nil && math.IsNaN(*p.Max)) {
			return domain.Invalid(p.Field, "range bound cannot be NaN")
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return domain.Invalid(p.Field, fmt.Sprintf("minimum %v exceeds maximum %v", *p.Min, *p.Max))
		}
		return nil
	case OpAnyOf:
		if len(p.Values) == 0 {
			return domain.Invalid(p.Field, "needs at least one value")
		}
		return nil
	default:
		return domain.Invalid(p.Field, fmt.Sprintf("unknown operator %q", p.Op))
	}
}

func (p Predicate) String() string {
	switch p.Op {
	case OpRange:
		return fmt.Sprintf("%s in [%s, %s]", p.Field, bound(p.Min), bound(p.Max))
	case OpAnyOf:
		return fmt.Sprintf("%s any of %v", p.Field, p.Values)
	default:
		return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
	}
}

func bound(f *float64) string {
	if f == nil {
		return "*"
	}
	return domain.Stringify(*f)
}
