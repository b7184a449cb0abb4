package gputex

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// transport suffixes stripped before dispatch
const (
	suffixZstd = ".zst"
	suffixLZ4  = ".lz4"

	maxTransportLayers = 4
)

// unwrapTransport strips transport suffixes from name and wraps r with the
// matching decompressors. release must be called once the stream is done.
func unwrapTransport(name string, r io.Reader) (inner string, out io.Reader, release func(), err error) {
	inner, out = name, r
	var closers []func()
	release = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for layer := 0; layer < maxTransportLayers; layer++ {
		lower := strings.ToLower(inner)
		switch {
		case strings.HasSuffix(lower, suffixZstd):
			dec, derr := zstd.NewReader(out, zstd.WithDecoderConcurrency(1))
			if derr != nil {
				release()
				return "", nil, nil, fmt.Errorf("zstd reader: %w", derr)
			}
			closers = append(closers, dec.Close)
			inner, out = inner[:len(inner)-len(suffixZstd)], dec
		case strings.HasSuffix(lower, suffixLZ4):
			inner, out = inner[:len(inner)-len(suffixLZ4)], lz4.NewReader(out)
		default:
			return inner, out, release, nil
		}
	}

	return inner, out, release, nil
}
