package testutil

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/ftr/internal/block"
)

// Builder assembles FTR containers for tests.
//
// Chunks are appended in call order. Bytes wraps them the way the recorder
// does: self-described CBOR tag, indefinite-length array, break.
//
// The first encoding error is kept and returned by Bytes.
type Builder struct {
	chunks [][]byte
	err    error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Raw appends a chunk with an arbitrary tag and content.
func (b *Builder) Raw(tag uint64, content any) *Builder {
	if b.err != nil {
		return b
	}
	data, err := cbor.Marshal(cbor.Tag{Number: tag, Content: content})
	if err != nil {
		b.err = err
		return b
	}
	b.chunks = append(b.chunks, data)
	return b
}

// Info appends an info chunk carrying the timescale.
func (b *Builder) Info(timescale uint64) *Builder {
	return b.Raw(6, []any{timescale})
}

// Dictionary appends an uncompressed dictionary chunk.
func (b *Builder) Dictionary(entries map[uint64]string) *Builder {
	return b.Raw(8, b.encode(entries))
}

// DictionaryCompressed appends an LZ4 compressed dictionary chunk.
func (b *Builder) DictionaryCompressed(entries map[uint64]string) *Builder {
	return b.Raw(9, b.compressed(b.encode(entries)))
}

// Directory appends an uncompressed directory chunk holding entries.
func (b *Builder) Directory(entries ...cbor.Tag) *Builder {
	return b.Raw(10, b.encodeSeq(entries))
}

// DirectoryCompressed appends an LZ4 compressed directory chunk.
func (b *Builder) DirectoryCompressed(entries ...cbor.Tag) *Builder {
	return b.Raw(11, b.compressed(b.encodeSeq(entries)))
}

// Transactions appends an uncompressed transaction chunk for a stream.
func (b *Builder) Transactions(streamID uint64, entries ...cbor.Tag) *Builder {
	return b.Raw(12, []any{streamID, b.encodeSeq(entries)})
}

// TransactionsCompressed appends an LZ4 compressed transaction chunk.
func (b *Builder) TransactionsCompressed(streamID uint64, entries ...cbor.Tag) *Builder {
	payload := b.encodeSeq(entries)
	packed, err := block.Compress(payload)
	if err != nil && b.err == nil {
		b.err = err
	}
	return b.Raw(13, []any{streamID, uint64(len(payload)), packed})
}

// Relations appends an uncompressed relations chunk of [name_id, from, to]
// triples.
func (b *Builder) Relations(triples ...[3]uint64) *Builder {
	return b.Raw(14, b.encode(relationList(triples)))
}

// RelationsCompressed appends an LZ4 compressed relations chunk.
func (b *Builder) RelationsCompressed(triples ...[3]uint64) *Builder {
	return b.Raw(15, b.compressed(b.encode(relationList(triples))))
}

// Stream appends a top-level stream descriptor.
func (b *Builder) Stream(id, nameID, kindID uint64) *Builder {
	return b.Raw(16, []any{id, nameID, kindID})
}

// Generator appends a top-level generator descriptor.
func (b *Builder) Generator(id, nameID, streamID uint64) *Builder {
	return b.Raw(17, []any{id, nameID, streamID})
}

// Bytes returns the container.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := []byte{0xd9, 0xd9, 0xf7, 0x9f}
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return append(out, 0xff), nil
}

// SequenceBytes returns the chunks as a bare CBOR sequence.
func (b *Builder) SequenceBytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	var out []byte
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out, nil
}

// MustBytes returns the container or fails the test.
func (b *Builder) MustBytes(t testing.TB) []byte {
	t.Helper()
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build ftr container: %v", err)
	}
	return data
}

func (b *Builder) encode(v any) []byte {
	data, err := cbor.Marshal(v)
	if err != nil && b.err == nil {
		b.err = err
	}
	return data
}

func (b *Builder) encodeSeq(entries []cbor.Tag) []byte {
	out := []byte{}
	for _, e := range entries {
		out = append(out, b.encode(e)...)
	}
	return out
}

// compressed builds the (uncompressed_size, lz4_bytes) pair.
func (b *Builder) compressed(payload []byte) []any {
	packed, err := block.Compress(payload)
	if err != nil && b.err == nil {
		b.err = err
	}
	return []any{uint64(len(payload)), packed}
}

func relationList(triples [][3]uint64) []any {
	list := make([]any, len(triples))
	for i, tr := range triples {
		list[i] = []any{tr[0], tr[1], tr[2]}
	}
	return list
}

// StreamEntry is a stream descriptor nested in a directory chunk.
func StreamEntry(id, nameID, kindID uint64) cbor.Tag {
	return cbor.Tag{Number: 16, Content: []any{id, nameID, kindID}}
}

// GeneratorEntry is a generator descriptor nested in a directory chunk.
func GeneratorEntry(id, nameID, streamID uint64) cbor.Tag {
	return cbor.Tag{Number: 17, Content: []any{id, nameID, streamID}}
}

// TxEntry is a transaction header entry.
func TxEntry(id, generatorID, start, end uint64) cbor.Tag {
	return cbor.Tag{Number: 6, Content: []any{id, generatorID, start, end}}
}

// BeginAttr is a begin attribute entry.
func BeginAttr(nameID, typeID uint64, value any) cbor.Tag {
	return cbor.Tag{Number: 7, Content: []any{nameID, typeID, value}}
}

// RecordAttr is a record attribute entry.
func RecordAttr(nameID, typeID uint64, value any) cbor.Tag {
	return cbor.Tag{Number: 8, Content: []any{nameID, typeID, value}}
}

// EndAttr is an end attribute entry.
func EndAttr(nameID, typeID uint64, value any) cbor.Tag {
	return cbor.Tag{Number: 9, Content: []any{nameID, typeID, value}}
}

// Entry is an entry with an arbitrary tag.
func Entry(tag uint64, content any) cbor.Tag {
	return cbor.Tag{Number: tag, Content: content}
}
