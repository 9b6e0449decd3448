// Package canon serializes decoded values as canonical JSON (RFC 8785) and
// derives content hashes from it.
//
// Canonical output is byte-stable: object keys are ordered by UTF-16 code
// units, strings are NFC normalized and only the characters JSON requires
// are escaped. The CLI's JSON output and the store's attribute values both
// go through Marshal, so equal records always produce equal bytes.
package canon

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/text/unicode/norm"
)

// Object is a JSON object under construction.
type Object = map[string]any

// Marshal produces canonical JSON for v.
//
// Supported values are nil, bool, string, the integer kinds, float32 and
// float64, big.Int, time.Time, []byte, []any, map[string]any, map[any]any
// and cbor.Tag. Non-finite floats are written as the strings "NaN", "+Inf"
// and "-Inf". A big.Int is a JSON number when it fits in 64 bits and a
// decimal string otherwise. Times are RFC 3339 strings in UTC. Byte strings
// are written as standard base64. Keys of map[any]any are converted with
// fmt; cbor.Tag becomes {"content":...,"tag":N}.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeString(buf, val)
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case float32:
		writeFloat(buf, float64(val))
	case float64:
		writeFloat(buf, val)
	case big.Int:
		writeBigInt(buf, &val)
	case *big.Int:
		if val == nil {
			buf.WriteString("null")
		} else {
			writeBigInt(buf, val)
		}
	case time.Time:
		writeString(buf, val.UTC().Format(time.RFC3339Nano))
	case []byte:
		writeString(buf, base64.StdEncoding.EncodeToString(val))
	case cbor.ByteString:
		writeString(buf, base64.StdEncoding.EncodeToString([]byte(val)))
	case []any:
		return encodeArray(buf, val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return encodeArray(buf, arr)
	case map[string]any:
		return encodeObject(buf, val)
	case map[any]any:
		obj := make(map[string]any, len(val))
		for k, elem := range val {
			key := keyString(k)
			if _, dup := obj[key]; dup {
				return fmt.Errorf("duplicate object key %q after conversion", key)
			}
			obj[key] = elem
		}
		return encodeObject(buf, obj)
	case cbor.Tag:
		return encodeObject(buf, Object{"tag": val.Number, "content": val.Content})
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeBigInt keeps integers that fit in 64 bits numeric, matching how
// the same value would be written as int64 or uint64.
func writeBigInt(buf *bytes.Buffer, n *big.Int) {
	if n.IsInt64() || n.IsUint64() {
		buf.WriteString(n.String())
		return
	}
	writeString(buf, n.String())
}

func keyString(k any) string {
	switch key := k.(type) {
	case string:
		return key
	case cbor.ByteString:
		return base64.StdEncoding.EncodeToString([]byte(key))
	default:
		return fmt.Sprint(k)
	}
}

func encodeArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj map[string]any) error {
	buf.WriteByte('{')
	for i, k := range SortedKeys(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := encode(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// SortedKeys returns the keys of obj in UTF-16 code unit order. Go's
// string comparison orders by UTF-8 bytes, which differs above U+FFFF.
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// writeString writes s NFC normalized. Only quote, backslash and control
// characters are escaped; <, >, & and U+2028/U+2029 are written literally.
func writeString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"

	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// writeFloat follows the ECMAScript number serialization RFC 8785 adopts.
func writeFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		writeString(buf, "NaN")
		return
	case math.IsInf(f, 1):
		writeString(buf, "+Inf")
		return
	case math.IsInf(f, -1):
		writeString(buf, "-Inf")
		return
	case f == 0:
		buf.WriteByte('0')
		return
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits: 1e-07 becomes 1e-7.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		buf.WriteString(mant + "e" + sign + digits)
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
}
