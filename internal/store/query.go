package store

import "fmt"

// Condition is a single equality condition evaluated against a record.
// The medium is schema-less, so numeric values compare across types and
// everything else compares under string normalization.
type Condition struct {
	Column string
	Value  interface{}
	Negate bool
}

// Query filters a record list. Conditions are evaluated as AND.
type Query struct {
	Conditions []Condition
	Limit      int
	Offset     int
}

// Matches checks if a record satisfies all conditions in the query
func (r *Record) Matches(query Query) bool {
	for _, cond := range query.Conditions {
		value, exists := r.Values[cond.Column]
		if !exists {
			value = nil
		}
		equal := compareEqual(value, cond.Value)
		if equal == cond.Negate {
			return false
		}
	}
	return true
}

// Filter applies the query to an in-memory record list. There is no
// server-side filtering in the medium; this always follows a full read.
func Filter(records []Record, query Query) []Record {
	results := make([]Record, 0, len(records))
	for i := range records {
		if records[i].Matches(query) {
			results = append(results, records[i])
		}
	}

	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return []Record{}
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results
}

// compareEqual compares two values, converting numerics to a common type
func compareEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if isNumeric(a) && isNumeric(b) {
		return toFloat64(a) == toFloat64(b)
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// isNumeric checks if a value is numeric
func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// toFloat64 converts a numeric value to float64
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}
