package ftr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ftr/internal/block"
	"github.com/roach88/ftr/internal/cbortree"
)

// session holds the state of one file decode.
type session struct {
	opts    options
	log     *slog.Logger
	dict    *Dictionary
	records []Record

	// offset and tag of the top-level chunk being decoded
	offset   int64
	chunkTag uint64
}

// Decode decodes an in-memory FTR container.
func Decode(data []byte, opts ...Option) ([]Record, error) {
	return DecodeContext(context.Background(), data, opts...)
}

// DecodeContext is Decode with cancellation checked between chunks.
func DecodeContext(ctx context.Context, data []byte, opts ...Option) ([]Record, error) {
	o := newOptions(opts)
	s := &session{
		opts:   o,
		log:    o.logger,
		dict:   NewDictionary(),
		offset: -1,
	}
	if err := s.run(ctx, data); err != nil {
		return nil, err
	}
	if s.records == nil {
		s.records = []Record{}
	}
	return s.records, nil
}

func (s *session) run(ctx context.Context, data []byte) error {
	chunks, err := cbortree.Chunks(data)
	if err != nil {
		return &DecodeError{
			Code:    ErrCodeMalformedChunk,
			Message: "container is not well-formed cbor",
			Offset:  -1,
			Err:     err,
		}
	}

	hook := chunkHook{s: s}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.offset = c.Offset
		s.chunkTag, _ = cbortree.TagNumber(c.Raw)
		v, err := cbortree.Decode(c.Raw, hook)
		if err != nil {
			return s.fatal(err)
		}
		if v != nil {
			s.log.Debug("skipping untagged item", "offset", c.Offset)
		}
	}

	s.log.Debug("decode complete",
		"chunks", len(chunks),
		"records", len(s.records),
		"strings", s.dict.Len(),
	)
	return nil
}

func (s *session) emit(r Record) {
	s.records = append(s.records, r)
}

// fatal turns an error escaping a chunk decode into a DecodeError carrying
// the chunk's tag.
func (s *session) fatal(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return s.errorf(ErrCodeMalformedChunk, s.chunkTag, err, "chunk is not valid cbor")
}

func (s *session) errorf(code ErrorCode, tag uint64, err error, format string, args ...any) *DecodeError {
	return &DecodeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Tag:     tag,
		Offset:  s.offset,
		Err:     err,
	}
}

func (s *session) resolve(tag uint64, id uint64) (string, error) {
	str, err := s.dict.Resolve(id)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Tag = tag
			de.Offset = s.offset
		}
		return "", err
	}
	return str, nil
}

// tuple checks that v is an array of exactly n fields.
func (s *session) tuple(tag uint64, v any, n int) ([]any, error) {
	fields, ok := v.([]any)
	if !ok || len(fields) != n {
		return nil, s.errorf(ErrCodeMalformedChunk, tag, nil, "expected array of %d fields, got %s", n, describe(v))
	}
	return fields, nil
}

func (s *session) unsigned(tag uint64, v any, field string) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		if n >= 0 {
			return uint64(n), nil
		}
	}
	return 0, s.errorf(ErrCodeMalformedChunk, tag, nil, "%s: expected unsigned integer, got %s", field, describe(v))
}

func (s *session) byteString(tag uint64, v any, field string) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, s.errorf(ErrCodeMalformedChunk, tag, nil, "%s: expected byte string, got %s", field, describe(v))
	}
	return b, nil
}

// inflate decompresses a payload declared to expand to sizeV bytes.
func (s *session) inflate(tag uint64, sizeV, dataV any) ([]byte, error) {
	size, err := s.unsigned(tag, sizeV, "uncompressed size")
	if err != nil {
		return nil, err
	}
	data, err := s.byteString(tag, dataV, "compressed payload")
	if err != nil {
		return nil, err
	}
	if size > uint64(s.opts.maxDecompressed) {
		return nil, s.errorf(ErrCodeMalformedChunk, tag, nil,
			"declared size %d exceeds limit %d", size, s.opts.maxDecompressed)
	}

	out, err := block.Decompress(data, int(size))
	if err != nil {
		return nil, s.errorf(ErrCodeDecompressionMismatch, tag, err,
			"payload of %d bytes does not inflate to %d bytes", len(data), size)
	}
	return out, nil
}

// inflatePair handles the (uncompressed_size, compressed_bytes) payload.
func (s *session) inflatePair(tag uint64, v any) ([]byte, error) {
	fields, err := s.tuple(tag, v, 2)
	if err != nil {
		return nil, err
	}
	return s.inflate(tag, fields[0], fields[1])
}

// embedded decodes a payload that carries its own CBOR stream. A payload
// that is already structured is returned as the only value.
func (s *session) embedded(tag uint64, v any, hook cbortree.Hook) ([]any, error) {
	data, ok := v.([]byte)
	if !ok {
		return []any{v}, nil
	}
	values, err := cbortree.DecodeAll(data, hook)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, s.errorf(ErrCodeMalformedChunk, tag, err, "embedded payload is not well-formed cbor")
	}
	return values, nil
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case []any:
		return fmt.Sprintf("array of %d", len(x))
	case map[any]any:
		return fmt.Sprintf("map of %d", len(x))
	case []byte:
		return fmt.Sprintf("%d bytes", len(x))
	default:
		return fmt.Sprintf("%T", v)
	}
}
