package cbortree

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// TagSelfDescribed is the self-described CBOR tag (RFC 8949 section 3.4.6).
const TagSelfDescribed = 55799

// maxStandardTag is the highest tag number decoded natively by the library
// (date/time, bignums, decimal fractions, bigfloats).
const maxStandardTag = 5

const (
	majorArray = 4
	majorMap   = 5
	majorTag   = 6
	breakByte  = 0xff
)

// ErrMalformed is wrapped by every structural decode failure.
var ErrMalformed = errors.New("malformed cbor")

// ErrTrailingData is returned by Decode when bytes follow the first item.
var ErrTrailingData = errors.New("trailing data after cbor item")

// Hook interprets application tags during decode.
//
// OnTag receives the tag number and its already decoded content. The
// returned value replaces the tagged node in the tree. A non-nil error
// aborts the decode and is returned unchanged to the caller.
type Hook interface {
	OnTag(number uint64, content any) (any, error)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(number uint64, content any) (any, error)

// OnTag calls f(number, content).
func (f HookFunc) OnTag(number uint64, content any) (any, error) {
	return f(number, content)
}

var decMode = mustDecMode()

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		MaxNestedLevels:  256,
		MaxArrayElements: math.MaxInt32,
		MaxMapPairs:      math.MaxInt32,
		IndefLength:      cbor.IndefLengthAllowed,
		TagsMd:           cbor.TagsAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbortree: invalid decode options: %v", err))
	}
	return dm
}

// Decode decodes exactly one CBOR item, invoking hook for every application
// tag. Bytes after the item are an error.
func Decode(data []byte, hook Hook) (any, error) {
	item, rest, err := next(data)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(rest))
	}
	w := walker{hook: hook}
	return w.value(item)
}

// DecodeAll decodes a CBOR sequence (RFC 8742), invoking hook for every
// application tag across all items. An empty input yields no values.
func DecodeAll(data []byte, hook Hook) ([]any, error) {
	w := walker{hook: hook}
	var values []any
	for len(data) > 0 {
		item, rest, err := next(data)
		if err != nil {
			return nil, err
		}
		v, err := w.value(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		data = rest
	}
	return values, nil
}

// next splits off the first well-formed item of data.
func next(data []byte) (item, rest []byte, err error) {
	var raw cbor.RawMessage
	rest, err = decMode.UnmarshalFirst(data, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data[:len(data)-len(rest)], rest, nil
}

type walker struct {
	hook Hook
}

// value decodes item, which holds exactly one well-formed CBOR item.
func (w walker) value(item []byte) (any, error) {
	h, err := readHead(item)
	if err != nil {
		return nil, err
	}

	switch h.major {
	case majorArray:
		return w.array(item[h.size:], h)
	case majorMap:
		return w.mapping(item[h.size:], h)
	case majorTag:
		return w.tag(item, h)
	default:
		var v any
		if err := decMode.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return v, nil
	}
}

func (w walker) tag(item []byte, h head) (any, error) {
	if h.arg == TagSelfDescribed {
		return w.value(item[h.size:])
	}
	if h.arg <= maxStandardTag {
		var v any
		if err := decMode.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: tag %d: %v", ErrMalformed, h.arg, err)
		}
		return v, nil
	}

	content, err := w.value(item[h.size:])
	if err != nil {
		return nil, err
	}
	if w.hook == nil {
		return cbor.Tag{Number: h.arg, Content: content}, nil
	}
	return w.hook.OnTag(h.arg, content)
}

func (w walker) array(body []byte, h head) (any, error) {
	var out []any
	if !h.indefinite {
		// every element takes at least one byte
		if h.arg > uint64(len(body)) {
			return nil, fmt.Errorf("%w: array of %d elements in %d bytes", ErrMalformed, h.arg, len(body))
		}
		out = make([]any, 0, int(h.arg))
	}

	for i := uint64(0); h.indefinite || i < h.arg; i++ {
		if h.indefinite && len(body) > 0 && body[0] == breakByte {
			break
		}
		item, rest, err := next(body)
		if err != nil {
			return nil, err
		}
		v, err := w.value(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		body = rest
	}

	if out == nil {
		out = []any{}
	}
	return out, nil
}

func (w walker) mapping(body []byte, h head) (any, error) {
	if !h.indefinite && h.arg > uint64(len(body))/2 {
		return nil, fmt.Errorf("%w: map of %d pairs in %d bytes", ErrMalformed, h.arg, len(body))
	}

	out := make(map[any]any)
	for i := uint64(0); h.indefinite || i < h.arg; i++ {
		if h.indefinite && len(body) > 0 && body[0] == breakByte {
			break
		}
		keyItem, rest, err := next(body)
		if err != nil {
			return nil, err
		}
		valItem, rest, err := next(rest)
		if err != nil {
			return nil, err
		}
		k, err := w.value(keyItem)
		if err != nil {
			return nil, err
		}
		v, err := w.value(valItem)
		if err != nil {
			return nil, err
		}
		k, err = mapKey(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
		body = rest
	}
	return out, nil
}

// mapKey makes k usable as a Go map key.
func mapKey(k any) (any, error) {
	switch key := k.(type) {
	case []byte:
		return cbor.ByteString(key), nil
	case cbor.Tag:
		content, err := mapKey(key.Content)
		if err != nil {
			return nil, err
		}
		return cbor.Tag{Number: key.Number, Content: content}, nil
	case nil:
		return nil, nil
	}
	if !reflect.TypeOf(k).Comparable() {
		return nil, fmt.Errorf("%w: map key of type %T", ErrMalformed, k)
	}
	return k, nil
}
