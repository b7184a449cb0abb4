package gputex

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"

	"github.com/woozymasta/gputex/pkm"
)

// benchPNG builds a deterministic PNG used by raster benchmarks.
func benchPNG(b *testing.B, width, height int) []byte {
	b.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8((x*7 + y*3) & 0xff),  //nolint:gosec // bounded by mask
				G: uint8((x*13 + y*5) & 0xff), //nolint:gosec // bounded by mask
				B: uint8((x ^ y) & 0xff),      //nolint:gosec // bounded by mask
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		b.Fatalf("encode png: %v", err)
	}

	return buf.Bytes()
}

func BenchmarkDecodePKM(b *testing.B) {
	raw, payload := pkmFile(b, pkm.FormatRGBA8ETC2EAC, 1024, 1024)

	b.ReportAllocs()
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode("bench.pkm", bytes.NewReader(raw)); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkDecodeKTX(b *testing.B) {
	data := make([]byte, 1024*1024)
	raw := ktxFile(b, binary.LittleEndian, 1, data)

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode("bench.ktx", bytes.NewReader(raw)); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkDecodeTransportZstd(b *testing.B) {
	raw, payload := pkmFile(b, pkm.FormatRGB8ETC2, 1024, 1024)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		b.Fatalf("zstd writer: %v", err)
	}
	packed := enc.EncodeAll(raw, nil)
	_ = enc.Close()

	b.ReportAllocs()
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode("bench.pkm.zst", bytes.NewReader(packed)); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkDecodeRasterPNG(b *testing.B) {
	raw := benchPNG(b, 512, 512)

	b.ReportAllocs()
	b.SetBytes(512 * 512 * 4)
	b.ResetTimer()

	for b.Loop() {
		if _, err := Decode("bench.png", bytes.NewReader(raw)); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkLoader(b *testing.B) {
	raw, payload := pkmFile(b, pkm.FormatRGB8ETC2, 256, 256)
	src := &FSSource{FS: fstest.MapFS{"bench.pkm": {Data: raw}}}

	out := make(chan Outcome, 64)
	l := NewLoader(src, nil, ChanSink(out), &LoaderOptions{Workers: 4})
	done := make(chan struct{})
	go func() {
		for o := range out {
			if o.Err != nil {
				b.Errorf("load: %v", o.Err)
			}
		}
		close(done)
	}()

	b.ReportAllocs()
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for b.Loop() {
		if err := l.Submit(context.Background(), Request{Name: "bench.pkm"}); err != nil {
			b.Fatalf("submit: %v", err)
		}
	}

	l.Close()
	close(out)
	<-done
}
