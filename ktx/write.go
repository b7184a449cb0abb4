package ktx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode writes a single-level 2D KTX container holding data as level 0.
// h.NumberOfFaces and h.NumberOfMipmapLevels are forced to 1 and
// h.BytesOfKeyValueData is taken from len(metadata).
func Encode(w io.Writer, h Header, metadata, data []byte) error {
	order := h.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}

	h.NumberOfFaces = 1
	h.NumberOfMipmapLevels = 1
	h.BytesOfKeyValueData = uint32(len(metadata)) //nolint:gosec // caller-controlled, small

	buf := make([]byte, HeaderSize, HeaderSize+len(metadata)+4)
	copy(buf, Identifier[:])
	order.PutUint32(buf[IdentifierSize:], endiannessValue)

	fields := []uint32{
		h.GLType,
		h.GLTypeSize,
		h.GLFormat,
		h.GLInternalFormat,
		h.GLBaseInternalFormat,
		h.PixelWidth,
		h.PixelHeight,
		h.PixelDepth,
		h.NumberOfArrayElements,
		h.NumberOfFaces,
		h.NumberOfMipmapLevels,
		h.BytesOfKeyValueData,
	}
	for i, v := range fields {
		order.PutUint32(buf[IdentifierSize+4+i*4:], v)
	}
	buf = append(buf, metadata...)

	var size [4]byte
	order.PutUint32(size[:], uint32(len(data))) //nolint:gosec // bounded by caller
	buf = append(buf, size[:]...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing KTX header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing KTX image data: %w", err)
	}
	if pad := 3 - (len(data)+3)%4; pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("writing KTX mip padding: %w", err)
		}
	}

	return nil
}
