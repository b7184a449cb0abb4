/*
Package pkm reads PKM containers holding ETC1/ETC2/EAC compressed texture data.

A PKM file is a 16-byte big-endian header followed by the compressed blocks.
The payload is returned as-is; no block is decompressed.
*/
package pkm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// HeaderSize is the fixed PKM header size.
	HeaderSize = 16

	// DefaultChunkSize bounds a single payload read.
	DefaultChunkSize = 4096
)

// Magic values for the two container versions.
var (
	MagicV1 = [6]byte{'P', 'K', 'M', ' ', '1', '0'}
	MagicV2 = [6]byte{'P', 'K', 'M', ' ', '2', '0'}
)

// header field offsets
const (
	offFormat        = 6
	offEncodedWidth  = 8
	offEncodedHeight = 10
	offWidth         = 12
	offHeight        = 14
)

// Version is the container version taken from the magic.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	return fmt.Sprintf("PKM %d0", v)
}

// Header is a decoded PKM header.
type Header struct {
	Version       Version
	Format        Format
	EncodedWidth  uint16
	EncodedHeight uint16
	Width         uint16
	Height        uint16
}

// Image is a decoded PKM container.
type Image struct {
	Header Header
	Data   []byte
}

// PayloadSize returns the number of compressed bytes following the header.
// Every format is sized as 4 bits per pixel over 4x4-aligned dimensions.
func (h *Header) PayloadSize() int {
	return ceil4(int(h.Width)) * ceil4(int(h.Height)) / 2
}

// MarshalBinary encodes the header into its 16-byte form.
func (h *Header) MarshalBinary() ([]byte, error) {
	var magic [6]byte
	switch h.Version {
	case V1:
		magic = MagicV1
	case V2:
		magic = MagicV2
	default:
		return nil, fmt.Errorf("%w: version %d", ErrInvalidMagic, h.Version)
	}
	if !h.Format.Valid() {
		return nil, fmt.Errorf("%w: 0x%04x", ErrUnsupportedFormat, uint16(h.Format))
	}

	buf := make([]byte, HeaderSize)
	copy(buf, magic[:])
	binary.BigEndian.PutUint16(buf[offFormat:], uint16(h.Format))
	binary.BigEndian.PutUint16(buf[offEncodedWidth:], h.EncodedWidth)
	binary.BigEndian.PutUint16(buf[offEncodedHeight:], h.EncodedHeight)
	binary.BigEndian.PutUint16(buf[offWidth:], h.Width)
	binary.BigEndian.PutUint16(buf[offHeight:], h.Height)

	return buf, nil
}

// DecodeHeader reads and validates the PKM header from r.
func DecodeHeader(r io.Reader) (*Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}

	return parseHeader(buf[:])
}

func parseHeader(buf []byte) (*Header, error) {
	h := &Header{}
	switch {
	case bytes.Equal(buf[:6], MagicV1[:]):
		h.Version = V1
	case bytes.Equal(buf[:6], MagicV2[:]):
		h.Version = V2
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, buf[:6])
	}

	h.Format = Format(binary.BigEndian.Uint16(buf[offFormat:]))
	if !h.Format.Valid() {
		return nil, fmt.Errorf("%w: 0x%04x", ErrUnsupportedFormat, uint16(h.Format))
	}

	h.EncodedWidth = binary.BigEndian.Uint16(buf[offEncodedWidth:])
	h.EncodedHeight = binary.BigEndian.Uint16(buf[offEncodedHeight:])
	h.Width = binary.BigEndian.Uint16(buf[offWidth:])
	h.Height = binary.BigEndian.Uint16(buf[offHeight:])

	if !paddingOK(h.EncodedWidth, h.Width) {
		return nil, fmt.Errorf("%w: encoded width %d, width %d", ErrInconsistentDimensions, h.EncodedWidth, h.Width)
	}
	if !paddingOK(h.EncodedHeight, h.Height) {
		return nil, fmt.Errorf("%w: encoded height %d, height %d", ErrInconsistentDimensions, h.EncodedHeight, h.Height)
	}

	return h, nil
}

// Decode reads a PKM header and its full payload from r.
func Decode(r io.Reader) (*Image, error) {
	return DecodeWithChunkSize(r, DefaultChunkSize)
}

// DecodeWithChunkSize is Decode with an explicit payload read chunk.
// chunk <= 0 uses DefaultChunkSize.
func DecodeWithChunkSize(r io.Reader, chunk int) (*Image, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	data, err := readPayload(r, h.PayloadSize(), chunk)
	if err != nil {
		return nil, err
	}

	return &Image{Header: *h, Data: data}, nil
}

// readPayload reads exactly size bytes, growing the buffer one chunk at a time.
func readPayload(r io.Reader, size, chunk int) ([]byte, error) {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	var buf bytes.Buffer
	for buf.Len() < size {
		want := size - buf.Len()
		if want > chunk {
			want = chunk
		}
		buf.Grow(want)
		if _, err := io.CopyN(&buf, r, int64(want)); err != nil {
			return nil, fmt.Errorf("%w: want %d bytes, got %d: %v", ErrTruncatedPayload, size, buf.Len(), err)
		}
	}

	return buf.Bytes(), nil
}

func paddingOK(encoded, actual uint16) bool {
	return encoded >= actual && encoded-actual <= 4
}

func ceil4(n int) int {
	return (n + 3) &^ 3
}
