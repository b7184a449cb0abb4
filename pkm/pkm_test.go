package pkm

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// buildPKM returns header bytes followed by payload bytes.
func buildPKM(t *testing.T, h Header, payload []byte) []byte {
	t.Helper()

	hdr, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	return append(hdr, payload...)
}

func patternPayload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*17 + 3) & 0xff)
	}
	return data
}

func TestDecodeRoundTrip(t *testing.T) {
	h := Header{Version: V2, Format: FormatRGB8ETC2, EncodedWidth: 8, EncodedHeight: 8, Width: 8, Height: 8}
	payload := patternPayload(h.PayloadSize())
	if len(payload) != 32 {
		t.Fatalf("PayloadSize() = %d, want 32", len(payload))
	}

	img, err := Decode(bytes.NewReader(buildPKM(t, h, payload)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if img.Header != h {
		t.Fatalf("header = %+v, want %+v", img.Header, h)
	}
	if !bytes.Equal(img.Data, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestDecodeBothMagics(t *testing.T) {
	t.Parallel()

	for _, v := range []Version{V1, V2} {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			t.Parallel()

			h := Header{Version: v, Format: FormatETC1RGB8, EncodedWidth: 4, EncodedHeight: 4, Width: 4, Height: 4}
			img, err := Decode(bytes.NewReader(buildPKM(t, h, make([]byte, 8))))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Header.Version != v {
				t.Fatalf("version = %d, want %d", img.Header.Version, v)
			}
		})
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	t.Parallel()

	valid := Header{Version: V2, Format: FormatRGBA8ETC2EAC, EncodedWidth: 8, EncodedHeight: 8, Width: 8, Height: 8}

	mutate := func(fn func(b []byte)) []byte {
		b, _ := valid.MarshalBinary()
		fn(b)
		return b
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "short", data: []byte("PKM 20"), wantErr: ErrHeaderRead},
		{name: "empty", data: nil, wantErr: ErrHeaderRead},
		{name: "bad-magic", data: mutate(func(b []byte) { copy(b, "PKM 30") }), wantErr: ErrInvalidMagic},
		{name: "lowercase-magic", data: mutate(func(b []byte) { copy(b, "pkm 10") }), wantErr: ErrInvalidMagic},
		{name: "unknown-format", data: mutate(func(b []byte) { b[7] = 0x02 }), wantErr: ErrUnsupportedFormat},
		{name: "srgb-format", data: mutate(func(b []byte) { b[7] = 0x09 }), wantErr: ErrUnsupportedFormat},
		{name: "high-byte-format", data: mutate(func(b []byte) { b[6] = 0x01 }), wantErr: ErrUnsupportedFormat},
		{name: "encoded-width-smaller", data: mutate(func(b []byte) { b[9] = 4 }), wantErr: ErrInconsistentDimensions},
		{name: "encoded-width-too-large", data: mutate(func(b []byte) { b[9] = 13 }), wantErr: ErrInconsistentDimensions},
		{name: "encoded-height-too-large", data: mutate(func(b []byte) { b[11] = 16 }), wantErr: ErrInconsistentDimensions},
		{name: "height-larger", data: mutate(func(b []byte) { b[15] = 9 }), wantErr: ErrInconsistentDimensions},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeHeader(bytes.NewReader(tc.data))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPaddingBounds(t *testing.T) {
	t.Parallel()

	for pad := uint16(0); pad <= 6; pad++ {
		h := Header{Version: V1, Format: FormatETC1RGB8, EncodedWidth: 10 + pad, EncodedHeight: 10, Width: 10, Height: 10}
		b, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}

		_, err = DecodeHeader(bytes.NewReader(b))
		if pad <= 4 && err != nil {
			t.Fatalf("pad %d: unexpected error %v", pad, err)
		}
		if pad > 4 && !errors.Is(err, ErrInconsistentDimensions) {
			t.Fatalf("pad %d: expected ErrInconsistentDimensions, got %v", pad, err)
		}
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	t.Parallel()

	h := Header{Version: V2, Format: FormatRGB8ETC2, EncodedWidth: 64, EncodedHeight: 64, Width: 64, Height: 64}
	full := buildPKM(t, h, patternPayload(h.PayloadSize()))

	for _, cut := range []int{HeaderSize, HeaderSize + 1, HeaderSize + 1000, HeaderSize + 1500, len(full) - 1} {
		img, err := DecodeWithChunkSize(bytes.NewReader(full[:cut]), 1000)
		if !errors.Is(err, ErrTruncatedPayload) {
			t.Fatalf("cut %d: expected ErrTruncatedPayload, got %v", cut, err)
		}
		if img != nil {
			t.Fatalf("cut %d: got partial image", cut)
		}
	}
}

func TestDecodeLeavesTrailingBytes(t *testing.T) {
	t.Parallel()

	h := Header{Version: V2, Format: FormatR11EAC, EncodedWidth: 4, EncodedHeight: 4, Width: 3, Height: 1}
	r := bytes.NewReader(append(buildPKM(t, h, patternPayload(8)), 0xAA, 0xBB))

	img, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Data) != 8 {
		t.Fatalf("len(Data) = %d, want 8", len(img.Data))
	}

	rest, _ := io.ReadAll(r)
	if !bytes.Equal(rest, []byte{0xAA, 0xBB}) {
		t.Fatalf("trailing bytes = %x", rest)
	}
}

func TestPayloadSizeTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h uint16
		want int
	}{
		{w: 1, h: 1, want: 8},
		{w: 4, h: 4, want: 8},
		{w: 5, h: 7, want: 32},
		{w: 8, h: 8, want: 32},
		{w: 256, h: 128, want: 16384},
	}

	for _, tc := range tests {
		h := Header{Width: tc.w, Height: tc.h}
		if got := h.PayloadSize(); got != tc.want {
			t.Fatalf("PayloadSize(%dx%d) = %d, want %d", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestFormatGLInternalFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   uint32
	}{
		{FormatETC1RGB8, 0x8D64},
		{FormatRGB8ETC2, 0x9274},
		{FormatRGBA8ETC2EAC, 0x9278},
		{FormatRGB8PunchthroughAlpha1, 0x9276},
		{FormatR11EAC, 0x9270},
		{FormatRG11EAC, 0x9272},
		{FormatSignedR11EAC, 0x9271},
		{FormatSignedRG11EAC, 0x9273},
		{Format(0x0002), 0},
		{Format(0x000B), 0},
	}

	for _, tc := range tests {
		if got := tc.format.GLInternalFormat(); got != tc.want {
			t.Fatalf("%v.GLInternalFormat() = 0x%04X, want 0x%04X", tc.format, got, tc.want)
		}
	}
}
