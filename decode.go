package gputex

import (
	"errors"
	"io"
	"strings"

	"github.com/woozymasta/gputex/dds"
	"github.com/woozymasta/gputex/ktx"
	"github.com/woozymasta/gputex/pkm"
)

// Container identifies which decoder handles a name.
type Container int

const (
	ContainerRaster Container = iota
	ContainerPKM
	ContainerKTX
)

func (c Container) String() string {
	switch c {
	case ContainerPKM:
		return "pkm"
	case ContainerKTX:
		return "ktx"
	default:
		return "raster"
	}
}

// ContainerOf returns the decoder selected for name by its suffix,
// ignoring case and up to four transport suffixes (.zst, .lz4).
func ContainerOf(name string) Container {
	lower := strings.ToLower(name)
	for layer := 0; layer < maxTransportLayers; layer++ {
		trimmed := strings.TrimSuffix(lower, suffixZstd)
		if trimmed == lower {
			trimmed = strings.TrimSuffix(lower, suffixLZ4)
		}
		if trimmed == lower {
			break
		}
		lower = trimmed
	}

	return containerBySuffix(lower)
}

func containerBySuffix(name string) Container {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pkm"):
		return ContainerPKM
	case strings.HasSuffix(lower, ".ktx"):
		return ContainerKTX
	default:
		return ContainerRaster
	}
}

// DecoderOptions configures a Decoder. Nil uses defaults.
type DecoderOptions struct {
	// Raster decodes names that are neither PKM nor KTX.
	// Nil uses &ImageDecoder{}.
	Raster RasterDecoder
	// ChunkSize bounds a single payload read for PKM and KTX.
	// <= 0 uses the package defaults.
	ChunkSize int
	// DisableTransport turns off .zst/.lz4 unwrapping.
	DisableTransport bool
}

// Decoder selects a container decoder by name and produces a Texture.
// A Decoder holds no per-request state and is safe for concurrent use.
type Decoder struct {
	raster    RasterDecoder
	chunkSize int
	transport bool
}

// NewDecoder returns a Decoder configured by opts.
func NewDecoder(opts *DecoderOptions) *Decoder {
	d := &Decoder{raster: &ImageDecoder{}, transport: true}
	if opts == nil {
		return d
	}

	if opts.Raster != nil {
		d.raster = opts.Raster
	}
	d.chunkSize = opts.ChunkSize
	d.transport = !opts.DisableTransport

	return d
}

var defaultDecoder = NewDecoder(nil)

// Decode decodes r using the default Decoder.
func Decode(name string, r io.Reader) (*Texture, error) {
	return defaultDecoder.Decode(name, r)
}

// Load opens name from src and decodes it using the default Decoder.
func Load(src Source, name string) (*Texture, error) {
	return defaultDecoder.Load(src, name)
}

// Decode reads one texture from r; name selects the decoder and appears in
// errors. Every failure is an *Error and no partial Texture is returned.
// r is not closed.
func (d *Decoder) Decode(name string, r io.Reader) (*Texture, error) {
	inner := name
	if d.transport {
		var (
			release func()
			err     error
		)
		inner, r, release, err = unwrapTransport(name, r)
		if err != nil {
			return nil, &Error{Kind: KindIO, Source: name, Reason: "unable to open compressed stream", Err: err}
		}
		defer release()
	}

	var (
		tex *Texture
		err error
	)
	switch containerBySuffix(inner) {
	case ContainerPKM:
		tex, err = d.decodePKM(r)
	case ContainerKTX:
		tex, err = d.decodeKTX(r)
	default:
		tex, err = d.decodeRaster(name, r)
	}
	if err != nil {
		return nil, classify(name, err)
	}

	return tex, nil
}

// Load opens name from src, decodes it and closes the stream on every path.
// A missing source fails with KindIO without any format detection.
func (d *Decoder) Load(src Source, name string) (tex *Texture, err error) {
	rc, err := src.Open(name)
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			return nil, &Error{Kind: KindIO, Source: name, Reason: "unable to find image", Err: err}
		}
		return nil, &Error{Kind: KindIO, Source: name, Reason: "error loading image file", Err: err}
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			tex, err = nil, &Error{Kind: KindIO, Source: name, Reason: "closing image file", Err: cerr}
		}
	}()

	return d.Decode(name, rc)
}

func (d *Decoder) decodePKM(r io.Reader) (*Texture, error) {
	img, err := pkm.DecodeWithChunkSize(r, d.chunkSize)
	if err != nil {
		return nil, err
	}

	h := img.Header
	return newTexture(uint32(h.Width), uint32(h.Height), GPUFormat(h.Format.GLInternalFormat()), img.Data), nil
}

func (d *Decoder) decodeKTX(r io.Reader) (*Texture, error) {
	img, err := ktx.Decode(r, &ktx.Options{ChunkSize: d.chunkSize})
	if err != nil {
		return nil, err
	}

	h := img.Header
	return newTexture(h.PixelWidth, h.PixelHeight, GPUFormat(h.GLInternalFormat), img.Data), nil
}

func (d *Decoder) decodeRaster(name string, r io.Reader) (*Texture, error) {
	sr := &stickyReader{r: r}
	img, err := d.raster.DecodeRaster(sr)
	if err != nil {
		if sr.err != nil || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, dds.ErrReadData) || errors.Is(err, dds.ErrTruncatedData) {
			return nil, &Error{Kind: KindIO, Source: name, Reason: "error reading image", Err: err}
		}
		return nil, &Error{Kind: KindFormat, Source: name, Reason: "unable to decode image", Err: err}
	}
	if img == nil {
		return nil, &Error{Kind: KindFormat, Source: name, Reason: "unable to decode image"}
	}

	w, h, pix := toRGBA8(img)
	return newTexture(uint32(w), uint32(h), FormatRGBA8, pix), nil //nolint:gosec // image bounds are non-negative
}

// stickyReader remembers the first read error from the underlying stream
// other than io.EOF, so raster failures can be told apart from bad data.
type stickyReader struct {
	r   io.Reader
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}
