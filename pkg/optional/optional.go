// Package optional models a JSON field that can be absent, explicitly null, or set.
//
//	type Patch struct {
//		Cover optional.Value[string] `json:"cover"`
//	}
//
// After decoding, Cover.Present reports whether the key appeared, Cover.Null
// whether it was null, and Cover.V holds the value otherwise.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a tri-state field. The zero value means "absent".
type Value[T any] struct {
	Present bool
	Null    bool
	V       T
}

// Of returns a present, non-null value.
func Of[T any](v T) Value[T] {
	return Value[T]{Present: true, V: v}
}

// Null returns a present null value.
func Null[T any]() Value[T] {
	return Value[T]{Present: true, Null: true}
}

// IsSet reports whether the field carries a non-null value.
func (o Value[T]) IsSet() bool {
	return o.Present && !o.Null
}

// Ptr returns nil for null and a pointer to a copy of the value otherwise.
// Call only when Present.
func (o Value[T]) Ptr() *T {
	if o.Null {
		return nil
	}
	v := o.V
	return &v
}

// UnmarshalJSON is only called by encoding/json when the key is present.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.V = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.V)
}

// MarshalJSON writes null for absent or null values.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}
