package domain

import "strings"

// MatchesFilter checks if a record matches the given filter criteria
func MatchesFilter(rec Record, filter Filter) bool {
	for field, expectedValue := range filter {
		actualValue, exists := rec.Lookup(field)
		if !exists {
			return false // Field doesn't exist in record
		}

		// Identifiers are compared exactly
		if field == FieldID {
			if !SameValue(actualValue, expectedValue) {
				return false
			}
			continue
		}

		if !ValuesMatch(actualValue, expectedValue) {
			return false // Values don't match
		}
	}
	return true // All filter criteria match
}

// ValuesMatch compares two values for equality, handling different types
func ValuesMatch(actual, expected interface{}) bool {
	// Handle nil values
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	// Handle string comparison (case-insensitive for better UX)
	if actualStr, ok1 := actual.(string); ok1 {
		if expectedStr, ok2 := expected.(string); ok2 {
			return strings.EqualFold(actualStr, expectedStr)
		}
	}

	// Handle numeric comparison
	if actualNum, ok1 := ToFloat64(actual); ok1 {
		if expectedNum, ok2 := ToFloat64(expected); ok2 {
			return actualNum == expectedNum
		}
	}

	if actualBool, ok1 := actual.(bool); ok1 {
		if expectedBool, ok2 := expected.(bool); ok2 {
			return actualBool == expectedBool
		}
	}

	// Mixed scalar types compare by their string form ("30" matches 30)
	if isScalar(actual) && isScalar(expected) {
		return strings.EqualFold(Stringify(actual), Stringify(expected))
	}
	return false
}

// SameValue is the exact counterpart of ValuesMatch: strings compare
// byte for byte and values of different kinds never match. Numbers still
// compare across numeric types.
func SameValue(actual, expected interface{}) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	switch a := actual.(type) {
	case string:
		e, ok := expected.(string)
		return ok && a == e
	case bool:
		e, ok := expected.(bool)
		return ok && a == e
	}
	if a, ok := ToFloat64(actual); ok {
		e, ok := ToFloat64(expected)
		return ok && a == e
	}
	return false
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	_, ok := ToFloat64(v)
	return ok
}
