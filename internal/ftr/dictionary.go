package ftr

import "fmt"

// Dictionary maps string ids to strings for one decode session.
//
// Entries are never removed. InsertAll overwrites ids that are already
// present; the format does not say whether a repeated id is legal, so the
// last writer wins.
type Dictionary struct {
	entries map[uint64]string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[uint64]string)}
}

// InsertAll merges entries into the dictionary.
func (d *Dictionary) InsertAll(entries map[uint64]string) {
	for id, s := range entries {
		d.entries[id] = s
	}
}

// Resolve returns the string for id, or an UNKNOWN_STRING_ID error.
func (d *Dictionary) Resolve(id uint64) (string, error) {
	s, ok := d.entries[id]
	if !ok {
		return "", &DecodeError{
			Code:    ErrCodeUnknownStringID,
			Message: fmt.Sprintf("string id %d is not in the dictionary", id),
			Offset:  -1,
		}
	}
	return s, nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
