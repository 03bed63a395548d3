package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope decodes either a bare JSON array or an object holding the array
// under key, since list endpoints have shipped in both shapes.
type envelope[T any] struct {
	key   string
	items []T
}

func (e *envelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		e.items = []T{}
		return nil
	}
	if trimmed[0] == '[' {
		return e.decodeItems(trimmed)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	raw, ok := obj[e.key]
	if !ok {
		return fmt.Errorf("response has no %q field", e.key)
	}
	return e.decodeItems(raw)
}

func (e *envelope[T]) decodeItems(raw []byte) error {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	e.items = items
	return nil
}
