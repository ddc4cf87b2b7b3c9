package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a PATCH field was present in JSON and, if so,
// whether it was an explicit null. Set=false means "leave unchanged".
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}

	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// IsNull reports an explicit null.
func (n Nullable[T]) IsNull() bool {
	return n.Set && n.Value == nil
}

// Some builds a set, non-null value. Handy in tests and service callers.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null builds an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}
