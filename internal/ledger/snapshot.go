package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSnapshot is returned when snapshot bytes cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// EncodeSnapshot renders entries as an indented JSON object, keys sorted.
func EncodeSnapshot(entries map[string]bool) ([]byte, error) {
	if entries == nil {
		entries = map[string]bool{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// DecodeSnapshot parses a snapshot. Two shapes are accepted: an object
// mapping question id to last outcome, and the older array of mastered ids.
func DecodeSnapshot(data []byte) (map[string]bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSnapshot)
	}

	var entries map[string]bool
	switch trimmed[0] {
	case '{':
		if err := decodeStrict(trimmed, &entries); err != nil {
			return nil, err
		}
	case '[':
		var ids []string
		if err := decodeStrict(trimmed, &ids); err != nil {
			return nil, err
		}
		entries = make(map[string]bool, len(ids))
		for _, id := range ids {
			entries[id] = true
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidSnapshot)
	}

	if entries == nil {
		entries = map[string]bool{}
	}
	if _, ok := entries[""]; ok {
		return nil, fmt.Errorf("%w: empty question id", ErrInvalidSnapshot)
	}
	return entries, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data after document", ErrInvalidSnapshot)
	}
	return nil
}
