package cbortree

import (
	"encoding/binary"
	"fmt"
)

// head is the initial byte and argument of a CBOR data item.
type head struct {
	major      byte
	arg        uint64
	size       int // bytes taken by the head
	indefinite bool
}

func readHead(data []byte) (head, error) {
	if len(data) == 0 {
		return head{}, fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}

	h := head{major: data[0] >> 5, size: 1}
	ai := data[0] & 0x1f
	switch {
	case ai < 24:
		h.arg = uint64(ai)
	case ai == 24:
		h.size = 2
	case ai == 25:
		h.size = 3
	case ai == 26:
		h.size = 5
	case ai == 27:
		h.size = 9
	case ai == 31:
		h.indefinite = true
	default:
		return head{}, fmt.Errorf("%w: reserved additional info %d", ErrMalformed, ai)
	}

	if len(data) < h.size {
		return head{}, fmt.Errorf("%w: truncated head", ErrMalformed)
	}
	switch h.size {
	case 2:
		h.arg = uint64(data[1])
	case 3:
		h.arg = uint64(binary.BigEndian.Uint16(data[1:]))
	case 5:
		h.arg = uint64(binary.BigEndian.Uint32(data[1:]))
	case 9:
		h.arg = binary.BigEndian.Uint64(data[1:])
	}
	return h, nil
}
