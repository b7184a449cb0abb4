/*
Package ktx reads single-image KTX v1 containers.

Only the first image block (mip level 0) is extracted. Mipmap chains, cubemaps,
texture arrays and 3D textures are rejected with ErrUnsupportedFeature.
Key/value metadata is skipped during decode; it can be kept and parsed
separately with ParseKeyValues.
*/
package ktx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// IdentifierSize is the size of the file identifier.
	IdentifierSize = 12

	// HeaderSize is the size of the identifier, endianness marker and the 12 fields.
	HeaderSize = IdentifierSize + 4 + 12*4

	// DefaultChunkSize bounds a single payload read.
	DefaultChunkSize = 4096

	endiannessValue = 0x04030201
)

// Identifier is the KTX v1 file identifier.
var Identifier = [IdentifierSize]byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

// Header holds the fixed KTX header fields.
type Header struct {
	ByteOrder             binary.ByteOrder
	GLType                uint32
	GLTypeSize            uint32
	GLFormat              uint32
	GLInternalFormat      uint32
	GLBaseInternalFormat  uint32
	PixelWidth            uint32
	PixelHeight           uint32
	PixelDepth            uint32
	NumberOfArrayElements uint32
	NumberOfFaces         uint32
	NumberOfMipmapLevels  uint32
	BytesOfKeyValueData   uint32
}

// Image is a decoded single-level KTX container.
type Image struct {
	Header Header
	// Metadata holds the raw key/value block when Options.KeepMetadata is set.
	Metadata []byte
	Data     []byte
}

// Options configures decoding. Nil uses defaults.
type Options struct {
	// KeepMetadata retains the key/value block in Image.Metadata.
	KeepMetadata bool
	// ChunkSize bounds a single payload read; <= 0 uses DefaultChunkSize.
	ChunkSize int
}

// Probe reads the 12-byte identifier from r. A mismatch or a short read both
// yield ErrNotKTX.
func Probe(r io.Reader) error {
	var id [IdentifierSize]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return ErrNotKTX
	}
	if id != Identifier {
		return ErrNotKTX
	}

	return nil
}

// DecodeHeader reads the fields that follow the identifier.
// The identifier must already have been consumed by Probe.
func DecodeHeader(r io.Reader) (*Header, error) {
	var marker [4]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return nil, fmt.Errorf("%w: endianness: %v", ErrHeaderRead, err)
	}

	order, err := byteOrder(marker)
	if err != nil {
		return nil, err
	}

	var raw [12 * 4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}

	h := &Header{ByteOrder: order}
	fields := []*uint32{
		&h.GLType,
		&h.GLTypeSize,
		&h.GLFormat,
		&h.GLInternalFormat,
		&h.GLBaseInternalFormat,
		&h.PixelWidth,
		&h.PixelHeight,
		&h.PixelDepth,
		&h.NumberOfArrayElements,
		&h.NumberOfFaces,
		&h.NumberOfMipmapLevels,
		&h.BytesOfKeyValueData,
	}
	for i, f := range fields {
		*f = order.Uint32(raw[i*4:])
	}

	return h, nil
}

// byteOrder selects the header byte order from the raw marker bytes.
func byteOrder(marker [4]byte) (binary.ByteOrder, error) {
	switch {
	case binary.LittleEndian.Uint32(marker[:]) == endiannessValue:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(marker[:]) == endiannessValue:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: % x", ErrBadEndianness, marker[:])
	}
}

// Validate rejects texture shapes other than a single 2D image.
func (h *Header) Validate() error {
	switch {
	case h.PixelDepth != 0:
		return &featureError{feature: ErrUnsupported3D, detail: fmt.Sprintf("pixelDepth=%d", h.PixelDepth)}
	case h.NumberOfArrayElements != 0:
		return &featureError{feature: ErrUnsupportedArray, detail: fmt.Sprintf("numberOfArrayElements=%d", h.NumberOfArrayElements)}
	case h.NumberOfFaces != 1:
		return &featureError{feature: ErrUnsupportedCubemap, detail: fmt.Sprintf("numberOfFaces=%d", h.NumberOfFaces)}
	case h.NumberOfMipmapLevels != 1:
		return &featureError{feature: ErrUnsupportedMipmaps, detail: fmt.Sprintf("numberOfMipmapLevels=%d", h.NumberOfMipmapLevels)}
	}

	return nil
}

// Decode reads a KTX stream and returns its level 0 image.
// A stream that fails the identifier probe yields ErrNotKTX.
func Decode(r io.Reader, opts *Options) (*Image, error) {
	if opts == nil {
		opts = &Options{}
	}

	if err := Probe(r); err != nil {
		return nil, err
	}

	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	img := &Image{Header: *h}

	if opts.KeepMetadata {
		img.Metadata, err = readChunked(r, int64(h.BytesOfKeyValueData), opts.ChunkSize)
	} else {
		_, err = io.CopyN(io.Discard, r, int64(h.BytesOfKeyValueData))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %v", ErrTruncatedMetadata, h.BytesOfKeyValueData, err)
	}

	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSizeRead, err)
	}

	// imageSize is treated as signed so values with the high bit set are rejected.
	imageSize := int32(h.ByteOrder.Uint32(sizeBuf[:])) //nolint:gosec // intentional reinterpretation
	if imageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveImageSize, imageSize)
	}

	img.Data, err = readChunked(r, int64(imageSize), opts.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %v", ErrTruncatedImageData, imageSize, err)
	}

	return img, nil
}

// readChunked reads exactly size bytes, growing the buffer one chunk at a time.
func readChunked(r io.Reader, size int64, chunk int) ([]byte, error) {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	var buf bytes.Buffer
	for int64(buf.Len()) < size {
		want := size - int64(buf.Len())
		if want > int64(chunk) {
			want = int64(chunk)
		}
		buf.Grow(int(want))
		if _, err := io.CopyN(&buf, r, want); err != nil {
			return nil, fmt.Errorf("got %d bytes: %w", buf.Len(), err)
		}
	}

	return buf.Bytes(), nil
}
