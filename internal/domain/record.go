package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered field mapping for one player. JSON marshalling
// emits keys in insertion order and unmarshalling preserves document
// order, so a persisted record round-trips byte-identically.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value under key, appending the key on first use.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// GetString returns the value under key rendered as a string.
func (r *Record) GetString(key string) string {
	v, ok := r.values[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Keys returns the field names in insertion order. The slice is shared;
// callers must not mutate it.
func (r *Record) Keys() []string {
	return r.keys
}

func (r *Record) Len() int {
	return len(r.keys)
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, val)
	}

	_, err = dec.Token() // closing brace
	return err
}
