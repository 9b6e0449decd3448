package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/ftr/internal/canon"
)

// marshalValue converts an attribute value to canonical JSON TEXT.
func marshalValue(v any) (string, error) {
	data, err := canon.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// unmarshalValue parses a stored attribute value.
//
// Numbers come back as uint64 when non-negative integral, int64 when
// negative integral, float64 otherwise. Byte strings were stored as base64
// text and come back as strings.
func unmarshalValue(data string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return fromJSON(v)
}

func fromJSON(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return number(val)
	case []any:
		for i, elem := range val {
			conv, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			val[i] = conv
		}
		return val, nil
	case map[string]any:
		for k, elem := range val {
			conv, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			val[k] = conv
		}
		return val, nil
	default:
		return v, nil
	}
}

func number(n json.Number) (any, error) {
	s := n.String()
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: number %q: %w", s, err)
	}
	return f, nil
}

// toSQL stores a 64-bit unsigned id as its int64 bit pattern.
func toSQL(n uint64) int64 {
	return int64(n)
}

func fromSQL(n int64) uint64 {
	return uint64(n)
}
