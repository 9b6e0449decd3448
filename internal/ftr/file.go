package ftr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic starts a zstd frame (RFC 8878 section 3.1.1).
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// DecodeFile reads and decodes one FTR file.
func DecodeFile(path string, opts ...Option) ([]Record, error) {
	return DecodeFileContext(context.Background(), path, opts...)
}

// DecodeFileContext is DecodeFile with cancellation.
func DecodeFileContext(ctx context.Context, path string, opts ...Option) ([]Record, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	records, err := DecodeContext(ctx, data, opts...)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.File = path
		}
		return nil, err
	}
	return records, nil
}

// ReadFile returns the container bytes of an FTR file. Archived recordings
// compressed with zstd are unwrapped transparently.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ftr file: %w", err)
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode %s: %w", path, err)
	}
	return out, nil
}
