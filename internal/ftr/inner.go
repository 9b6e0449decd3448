package ftr

import "fmt"

type entryMode int

const (
	transactionMode entryMode = iota
	directoryMode
)

// entryHook interprets tags inside a directory or transaction payload.
// In transaction mode it remembers the last transaction header so that the
// attribute events following it carry its id.
type entryHook struct {
	s        *session
	mode     entryMode
	streamID uint64
	txID     uint64
	count    int
}

func (h *entryHook) OnTag(number uint64, content any) (any, error) {
	if h.mode == directoryMode {
		return h.s.dispatchDirectoryEntry(number, content)
	}
	return nil, h.dispatchEntry(InnerTag(number), content)
}

// dispatchDirectoryEntry handles the descriptor tags nested in a directory
// chunk. Other tags pass through unchanged.
func (s *session) dispatchDirectoryEntry(number uint64, v any) (any, error) {
	switch OuterTag(number) {
	case ChunkStream:
		return nil, s.stream(number, v)
	case ChunkGenerator:
		return nil, s.generator(number, v)
	default:
		return v, nil
	}
}

// dispatchEntry interprets one transaction chunk entry.
func (h *entryHook) dispatchEntry(tag InnerTag, v any) error {
	switch tag {
	case EntryTransaction:
		return h.transaction(v)
	case EntryBeginAttribute:
		return h.attribute(tag, PhaseBegin, v)
	case EntryRecordAttribute:
		return h.attribute(tag, PhaseRecord, v)
	case EntryEndAttribute:
		return h.attribute(tag, PhaseEnd, v)
	default:
		h.s.emit(Diagnostic{
			Scope:   ScopeEntry,
			Tag:     uint64(tag),
			Offset:  h.s.offset,
			Message: fmt.Sprintf("unknown entry tag %d in stream %d", uint64(tag), h.streamID),
		})
		return nil
	}
}

// transaction handles [id, generator_id, start_time, end_time].
func (h *entryHook) transaction(v any) error {
	s, t := h.s, uint64(EntryTransaction)

	fields, err := s.tuple(t, v, 4)
	if err != nil {
		return err
	}
	var vals [4]uint64
	names := [4]string{"transaction id", "generator id", "start time", "end time"}
	for i := range fields {
		if vals[i], err = s.unsigned(t, fields[i], names[i]); err != nil {
			return err
		}
	}

	h.txID = vals[0]
	h.count++
	s.emit(TransactionHeader{
		StreamID:    h.streamID,
		ID:          vals[0],
		GeneratorID: vals[1],
		StartTime:   vals[2],
		EndTime:     vals[3],
	})
	return nil
}

// attribute handles [name_id, type_id, value].
func (h *entryHook) attribute(tag InnerTag, phase Phase, v any) error {
	s, t := h.s, uint64(tag)

	fields, err := s.tuple(t, v, 3)
	if err != nil {
		return err
	}
	nameID, err := s.unsigned(t, fields[0], "attribute name id")
	if err != nil {
		return err
	}
	typeID, err := s.unsigned(t, fields[1], "attribute type id")
	if err != nil {
		return err
	}
	name, err := s.resolve(t, nameID)
	if err != nil {
		return err
	}

	value := fields[2]
	if TypeID(typeID).IsStringRef() {
		valueID, err := s.unsigned(t, value, "attribute value id")
		if err != nil {
			return err
		}
		if value, err = s.resolve(t, valueID); err != nil {
			return err
		}
	}

	s.emit(AttributeEvent{
		StreamID: h.streamID,
		TxID:     h.txID,
		Phase:    phase,
		Name:     name,
		TypeID:   TypeID(typeID),
		Value:    value,
	})
	return nil
}
