package gputex

import (
	"bufio"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"

	"github.com/woozymasta/gputex/dds"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/webp" // register WebP
)

// RasterDecoder decodes a generic image stream. It is used for every name
// that is not a PKM or KTX container.
type RasterDecoder interface {
	DecodeRaster(r io.Reader) (image.Image, error)
}

// RasterDecoderFunc adapts a function to RasterDecoder.
type RasterDecoderFunc func(r io.Reader) (image.Image, error)

// DecodeRaster calls f(r).
func (f RasterDecoderFunc) DecodeRaster(r io.Reader) (image.Image, error) {
	return f(r)
}

// ImageDecoder is the default RasterDecoder. It sniffs the stream with
// image.Decode (PNG, JPEG, GIF, BMP, WebP) and decodes DDS/EDDS with the
// dds package so BCn decode options can be applied.
type ImageDecoder struct {
	// DDS configures DDS/EDDS decoding; nil uses defaults.
	DDS *dds.Options
}

// DecodeRaster implements RasterDecoder.
func (d *ImageDecoder) DecodeRaster(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(len(dds.Magic)); err == nil && string(magic) == dds.Magic {
		var opts *dds.Options
		if d != nil {
			opts = d.DDS
		}
		return dds.DecodeWithOptions(br, opts)
	}

	img, _, err := image.Decode(br)
	return img, err
}

// toRGBA8 converts img into tightly packed, non-premultiplied RGBA rows,
// top to bottom.
func toRGBA8(img image.Image) (width, height int, pix []byte) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()

	if n, ok := img.(*image.NRGBA); ok && n.Stride == width*4 && b.Min == (image.Point{}) {
		return width, height, n.Pix[:width*height*4]
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return width, height, dst.Pix
}
