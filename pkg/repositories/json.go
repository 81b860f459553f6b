// Package repositories provides pgx-backed data access for every entity.
// List-valued and bag-valued fields are stored as JSONB: values are marshaled
// explicitly on write and unmarshaled from raw bytes on read.
package repositories

import (
	"encoding/json"
	"fmt"
)

func marshalJSON(v any, field string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", field, err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any, field string) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", field, err)
	}
	return nil
}
