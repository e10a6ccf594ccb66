// Package ref models foreign-key fields that the backend sends either as a bare
// id string or as a populated document.
package ref

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref points at another document. Value is set only when the server populated it.
type Ref[T any] struct {
	ID    string
	Value *T
}

// To returns an unpopulated reference to id.
func To[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Of returns a populated reference.
func Of[T any](id string, v *T) Ref[T] {
	return Ref[T]{ID: id, Value: v}
}

// IsZero reports whether the reference is empty.
func (r Ref[T]) IsZero() bool {
	return r.ID == "" && r.Value == nil
}

// UnmarshalJSON accepts a string id, a populated object, or null.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	}

	if data[0] != '{' {
		return fmt.Errorf("ref: unexpected JSON %s", data)
	}

	var key struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ref[T]{ID: key.ID, Value: &v}
	return nil
}

// MarshalJSON writes the populated document when present, the id otherwise.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
