package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/warp/profile-review/profile"
)

// EncodeFields serializes scalar profile fields for a text/JSON column.
func EncodeFields(fields map[string]any) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode profile fields: %w", err)
	}
	return string(b), nil
}

// DecodeFields reverses EncodeFields. Numbers come back as json.Number so
// they stringify exactly as they were stored.
func DecodeFields(data []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode profile fields: %w", err)
	}
	return fields, nil
}

// ChangeSetColumn returns the stored form of a change-set. Empty change-sets
// are stored as NULL.
func ChangeSetColumn(cs profile.RawChangeSet) *string {
	if len(bytes.TrimSpace(cs)) == 0 {
		return nil
	}
	s := string(cs)
	return &s
}

// ChangeSetFromColumn is the inverse of ChangeSetColumn.
func ChangeSetFromColumn(s *string) profile.RawChangeSet {
	if s == nil {
		return nil
	}
	return profile.RawChangeSet(*s)
}
