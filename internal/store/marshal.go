package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/sake/internal/value"
)

// marshalValue converts a value to canonical JSON TEXT for storage.
func marshalValue(v value.Value) (string, error) {
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// textOf returns the canonical filter text of v, or SQL NULL when v has none.
func textOf(v value.Value) sql.NullString {
	s, ok := value.Text(v)
	return sql.NullString{String: s, Valid: ok}
}

// unmarshalRecord parses a stored record back into a value.Object.
func unmarshalRecord(data string) (value.Object, error) {
	obj, err := value.UnmarshalObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return obj, nil
}
