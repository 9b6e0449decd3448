package ftr

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// chunkHook routes top-level tags to the chunk dispatcher. Every tag is
// absorbed: the decoded tree itself is not used.
type chunkHook struct {
	s *session
}

func (h chunkHook) OnTag(number uint64, content any) (any, error) {
	return nil, h.s.dispatchChunk(OuterTag(number), content)
}

// dispatchChunk interprets one top-level chunk.
func (s *session) dispatchChunk(tag OuterTag, v any) error {
	t := uint64(tag)

	switch tag {
	case ChunkInfo:
		s.log.Debug("info chunk", "offset", s.offset, "payload", v)
		return nil

	case ChunkDictionary:
		return s.dictionary(t, v)
	case ChunkDictionaryCompressed:
		data, err := s.inflatePair(t, v)
		if err != nil {
			return err
		}
		return s.dictionary(t, data)

	case ChunkDirectory:
		return s.directory(t, v)
	case ChunkDirectoryCompressed:
		data, err := s.inflatePair(t, v)
		if err != nil {
			return err
		}
		return s.directory(t, data)

	case ChunkTransactions:
		fields, err := s.tuple(t, v, 2)
		if err != nil {
			return err
		}
		streamID, err := s.unsigned(t, fields[0], "stream id")
		if err != nil {
			return err
		}
		return s.transactions(t, streamID, fields[1])
	case ChunkTransactionsCompressed:
		fields, err := s.tuple(t, v, 3)
		if err != nil {
			return err
		}
		streamID, err := s.unsigned(t, fields[0], "stream id")
		if err != nil {
			return err
		}
		data, err := s.inflate(t, fields[1], fields[2])
		if err != nil {
			return err
		}
		return s.transactions(t, streamID, data)

	case ChunkRelations:
		return s.relations(t, v)
	case ChunkRelationsCompressed:
		data, err := s.inflatePair(t, v)
		if err != nil {
			return err
		}
		return s.relations(t, data)

	case ChunkStream:
		return s.stream(t, v)
	case ChunkGenerator:
		return s.generator(t, v)

	default:
		s.emit(Diagnostic{
			Scope:   ScopeChunk,
			Tag:     t,
			Offset:  s.offset,
			Message: fmt.Sprintf("unknown chunk tag %d", t),
		})
		return nil
	}
}

func (s *session) dictionary(tag uint64, v any) error {
	values, err := s.embedded(tag, v, nil)
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return s.errorf(ErrCodeMalformedChunk, tag, nil, "expected one dictionary map, got %d items", len(values))
	}
	m, ok := values[0].(map[any]any)
	if !ok {
		return s.errorf(ErrCodeMalformedChunk, tag, nil, "expected dictionary map, got %s", describe(values[0]))
	}

	entries := make(map[uint64]string, len(m))
	for k, val := range m {
		id, err := s.unsigned(tag, k, "string id")
		if err != nil {
			return err
		}
		str, ok := val.(string)
		if !ok {
			return s.errorf(ErrCodeMalformedChunk, tag, nil, "string id %d: expected text, got %s", id, describe(val))
		}
		entries[id] = str
	}

	s.dict.InsertAll(entries)
	s.log.Debug("dictionary chunk", "offset", s.offset, "entries", len(entries), "total", s.dict.Len())
	return nil
}

func (s *session) directory(tag uint64, v any) error {
	before := len(s.records)
	if _, err := s.embedded(tag, v, &entryHook{s: s, mode: directoryMode}); err != nil {
		return err
	}
	s.log.Debug("directory chunk", "offset", s.offset, "descriptors", len(s.records)-before)
	return nil
}

func (s *session) transactions(tag uint64, streamID uint64, v any) error {
	data, err := s.byteString(tag, v, "entry bytes")
	if err != nil {
		return err
	}
	hook := &entryHook{s: s, mode: transactionMode, streamID: streamID}
	if _, err := s.embedded(tag, data, hook); err != nil {
		return err
	}
	s.log.Debug("transaction chunk", "offset", s.offset, "stream", streamID, "transactions", hook.count)
	return nil
}

func (s *session) relations(tag uint64, v any) error {
	values, err := s.embedded(tag, v, nil)
	if err != nil {
		return err
	}
	before := len(s.records)
	for _, value := range values {
		if err := s.collectRelations(tag, value); err != nil {
			return err
		}
	}
	s.log.Debug("relationship chunk", "offset", s.offset, "relations", len(s.records)-before)
	return nil
}

// collectRelations emits every [name_id, from, to] triple found in v.
// Anything else in a relations payload is left uninterpreted.
func (s *session) collectRelations(tag uint64, v any) error {
	switch x := v.(type) {
	case cbor.Tag:
		return s.collectRelations(tag, x.Content)
	case []any:
		if ids, ok := triple(x); ok {
			name, err := s.resolve(tag, ids[0])
			if err != nil {
				return err
			}
			s.emit(Relation{Name: name, From: ids[1], To: ids[2]})
			return nil
		}
		for _, elem := range x {
			if err := s.collectRelations(tag, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

func triple(fields []any) ([3]uint64, bool) {
	var ids [3]uint64
	if len(fields) != 3 {
		return ids, false
	}
	for i, f := range fields {
		n, ok := f.(uint64)
		if !ok {
			return ids, false
		}
		ids[i] = n
	}
	return ids, true
}

// stream handles [stream_id, name_id, kind_id].
func (s *session) stream(tag uint64, v any) error {
	fields, err := s.tuple(tag, v, 3)
	if err != nil {
		return err
	}
	id, err := s.unsigned(tag, fields[0], "stream id")
	if err != nil {
		return err
	}
	nameID, err := s.unsigned(tag, fields[1], "stream name id")
	if err != nil {
		return err
	}
	kindID, err := s.unsigned(tag, fields[2], "stream kind id")
	if err != nil {
		return err
	}
	name, err := s.resolve(tag, nameID)
	if err != nil {
		return err
	}
	kind, err := s.resolve(tag, kindID)
	if err != nil {
		return err
	}

	s.emit(StreamDescriptor{StreamID: id, Name: name, Kind: kind})
	return nil
}

// generator handles [generator_id, name_id, stream_id].
func (s *session) generator(tag uint64, v any) error {
	fields, err := s.tuple(tag, v, 3)
	if err != nil {
		return err
	}
	id, err := s.unsigned(tag, fields[0], "generator id")
	if err != nil {
		return err
	}
	nameID, err := s.unsigned(tag, fields[1], "generator name id")
	if err != nil {
		return err
	}
	streamID, err := s.unsigned(tag, fields[2], "stream id")
	if err != nil {
		return err
	}
	name, err := s.resolve(tag, nameID)
	if err != nil {
		return err
	}

	s.emit(GeneratorDescriptor{GeneratorID: id, Name: name, StreamID: streamID})
	return nil
}
