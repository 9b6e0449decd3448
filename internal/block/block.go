// Package block wraps LZ4 block compression for chunk payloads whose
// uncompressed size is declared next to the compressed bytes.
package block

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrSizeMismatch is returned when the decompressed length differs from the
// declared size.
var ErrSizeMismatch = errors.New("decompressed size mismatch")

// Decompress inflates an LZ4 block that must expand to exactly size bytes.
func Decompress(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("lz4 block: negative declared size %d", size)
	}

	// One spare byte so a block that expands past size is reported as a
	// mismatch rather than a short buffer.
	dst := make([]byte, size+1)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 block: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: got %d bytes, declared %d", ErrSizeMismatch, n, size)
	}
	return dst[:n], nil
}

// Compress deflates src into a single LZ4 block.
func Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 block: %w", err)
	}
	return dst[:n], nil
}
