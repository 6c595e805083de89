// Package record provides the base entity type of the ORM layer: lifecycle
// state tracking, field and reference storage with dirty recording, changeset
// building, and binary serialization.
package record

import (
	"reflect"
	"strconv"
	"strings"
)

// Value is a loaded field or reference slot. Absence of a slot in the
// backing map means "not loaded"; a Value with Null set means "loaded and
// null". This keeps the two states distinct without a sentinel object.
type Value struct {
	// Null is true if the slot is loaded but holds no value.
	Null bool
	// V is the held value; meaningless when Null is set.
	V any
}

// Of wraps a value for storage. A nil value becomes the null variant.
func Of(v any) Value {
	if v == nil {
		return Value{Null: true}
	}
	return Value{V: v}
}

// NullValue returns the loaded-and-null variant.
func NullValue() Value {
	return Value{Null: true}
}

// Get returns the held value, or nil for the null variant.
func (v Value) Get() any {
	if v.Null {
		return nil
	}
	return v.V
}

// looselyEqual compares two field values with type-coercing semantics, so a
// no-op set of an unchanged value is not recorded as dirty. Numbers and
// numeric strings compare by numeric value, booleans coerce to truthiness,
// and nil equals the zero-equivalent values (nil, "", 0, false). The coarse
// matching is deliberate: it mirrors the equality the store applies to
// persisted data.
func looselyEqual(a, b any) bool {
	if a == nil {
		return zeroEquivalent(b)
	}
	if b == nil {
		return zeroEquivalent(a)
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}

	if ab, ok := a.(bool); ok {
		return ab == truthy(b)
	}
	if bb, ok := b.(bool); ok {
		return bb == truthy(a)
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
	}

	return reflect.DeepEqual(a, b)
}

// zeroEquivalent reports whether v loosely equals nil.
func zeroEquivalent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	if f, ok := toFloat(v); ok {
		return f == 0
	}
	return false
}

// truthy reports whether v coerces to boolean true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

// toFloat converts numeric values and fully-numeric strings to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
