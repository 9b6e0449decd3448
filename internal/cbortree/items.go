package cbortree

import "fmt"

// Item is one raw CBOR data item and its byte offset in the input.
type Item struct {
	Offset int64
	Raw    []byte
}

// Items splits a CBOR sequence into its top-level items without decoding
// them. Each Raw slice aliases data.
func Items(data []byte) ([]Item, error) {
	var items []Item
	total := len(data)
	for len(data) > 0 {
		offset := int64(total - len(data))
		item, rest, err := next(data)
		if err != nil {
			return nil, fmt.Errorf("item at offset %d: %w", offset, err)
		}
		items = append(items, Item{Offset: offset, Raw: item})
		data = rest
	}
	return items, nil
}

// Chunks splits a container into chunk items. The container is a CBOR
// sequence; a top-level array (definite or indefinite, optionally wrapped in
// the self-described tag) is flattened into its elements. Any other item is
// returned as is.
func Chunks(data []byte) ([]Item, error) {
	items, err := Items(data)
	if err != nil {
		return nil, err
	}

	var chunks []Item
	for _, it := range items {
		elems, err := flatten(it)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, elems...)
	}
	return chunks, nil
}

func flatten(it Item) ([]Item, error) {
	raw, offset := it.Raw, it.Offset
	for {
		h, err := readHead(raw)
		if err != nil {
			return nil, fmt.Errorf("item at offset %d: %w", offset, err)
		}
		if h.major == majorTag && h.arg == TagSelfDescribed {
			raw = raw[h.size:]
			offset += int64(h.size)
			continue
		}
		if h.major != majorArray {
			return []Item{{Offset: offset, Raw: raw}}, nil
		}

		body := raw[h.size:]
		pos := offset + int64(h.size)
		var elems []Item
		for i := uint64(0); h.indefinite || i < h.arg; i++ {
			if h.indefinite && len(body) > 0 && body[0] == breakByte {
				break
			}
			elem, rest, err := next(body)
			if err != nil {
				return nil, fmt.Errorf("chunk at offset %d: %w", pos, err)
			}
			elems = append(elems, Item{Offset: pos, Raw: elem})
			pos += int64(len(elem))
			body = rest
		}
		return elems, nil
	}
}

// TagNumber returns the tag number of a tagged item, looking through the
// self-described tag. ok is false when item is not a tag.
func TagNumber(item []byte) (number uint64, ok bool) {
	for {
		h, err := readHead(item)
		if err != nil || h.major != majorTag {
			return 0, false
		}
		if h.arg != TagSelfDescribed {
			return h.arg, true
		}
		item = item[h.size:]
	}
}
