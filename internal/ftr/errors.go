package ftr

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes fatal decode errors.
type ErrorCode string

const (
	// ErrCodeMalformedChunk indicates a payload whose shape does not match
	// its tag, or bytes that are not valid CBOR.
	ErrCodeMalformedChunk ErrorCode = "MALFORMED_CHUNK"

	// ErrCodeDecompressionMismatch indicates a compressed payload that does
	// not inflate to its declared size.
	ErrCodeDecompressionMismatch ErrorCode = "DECOMPRESSION_MISMATCH"

	// ErrCodeUnknownStringID indicates a reference to a dictionary id that
	// no earlier dictionary chunk defined.
	ErrCodeUnknownStringID ErrorCode = "UNKNOWN_STRING_ID"
)

// DecodeError aborts the decode of one file.
type DecodeError struct {
	Code    ErrorCode
	Message string

	// Tag is the tag being dispatched when the error occurred.
	Tag uint64

	// Offset is the byte offset of the enclosing top-level chunk, -1 if
	// unknown.
	Offset int64

	// File is set by DecodeFile.
	File string

	Err error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: %s (tag=%d", e.Code, e.Message, e.Tag)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(", offset=%d", e.Offset)
	}
	msg += ")"
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsMalformedChunk returns true if err is a MALFORMED_CHUNK decode error.
func IsMalformedChunk(err error) bool {
	return hasCode(err, ErrCodeMalformedChunk)
}

// IsDecompressionMismatch returns true if err is a DECOMPRESSION_MISMATCH
// decode error.
func IsDecompressionMismatch(err error) bool {
	return hasCode(err, ErrCodeDecompressionMismatch)
}

// IsUnknownStringID returns true if err is an UNKNOWN_STRING_ID decode error.
func IsUnknownStringID(err error) bool {
	return hasCode(err, ErrCodeUnknownStringID)
}
