package gputex

import (
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/gputex/ktx"
	"github.com/woozymasta/gputex/pkm"
)

// Kind classifies a decode failure.
type Kind int

const (
	// KindIO covers unreadable streams, short reads and missing sources.
	KindIO Kind = iota + 1
	// KindFormat covers bad magic, bad field values and unknown format codes.
	KindFormat
	// KindUnsupportedFeature covers valid KTX headers describing mipmap
	// chains, cubemaps, arrays or 3D textures.
	KindUnsupportedFeature
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindFormat:
		return "FormatError"
	case KindUnsupportedFeature:
		return "UnsupportedFeatureError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrSourceNotFound is returned by a Source when the named stream does not exist.
var ErrSourceNotFound = errors.New("source not found")

// Error is the single failure type produced by Decoder and Loader.
type Error struct {
	Kind   Kind
	Source string
	Reason string
	Err    error
}

// Error reads "<reason>: <source>" followed by the underlying cause, if any.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Reason + ": " + e.Source
	}
	return e.Reason + ": " + e.Source + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// classify wraps a parser error into an *Error for the named source.
func classify(source string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	out := &Error{Source: source, Err: err}
	switch {
	case errors.Is(err, ktx.ErrUnsupportedFeature):
		out.Kind, out.Reason = KindUnsupportedFeature, "unsupported texture shape"
	case errors.Is(err, pkm.ErrInvalidMagic):
		out.Kind, out.Reason = KindFormat, "invalid PKM magic"
	case errors.Is(err, pkm.ErrUnsupportedFormat):
		out.Kind, out.Reason = KindFormat, "unsupported PKM format code"
	case errors.Is(err, pkm.ErrInconsistentDimensions):
		out.Kind, out.Reason = KindFormat, "inconsistent PKM dimensions"
	case errors.Is(err, pkm.ErrHeaderRead):
		out.Kind, out.Reason = KindIO, "short PKM header"
	case errors.Is(err, pkm.ErrTruncatedPayload):
		out.Kind, out.Reason = KindIO, "truncated PKM payload"
	case errors.Is(err, ktx.ErrNotKTX):
		out.Kind, out.Reason = KindFormat, "not a KTX file"
	case errors.Is(err, ktx.ErrBadEndianness):
		out.Kind, out.Reason = KindFormat, "bad KTX endianness marker"
	case errors.Is(err, ktx.ErrNonPositiveImageSize):
		out.Kind, out.Reason = KindFormat, "non-positive image size"
	case errors.Is(err, ktx.ErrHeaderRead), errors.Is(err, ktx.ErrTruncatedMetadata), errors.Is(err, ktx.ErrImageSizeRead):
		out.Kind, out.Reason = KindIO, "truncated KTX header"
	case errors.Is(err, ktx.ErrTruncatedImageData):
		out.Kind, out.Reason = KindIO, "truncated KTX image data"
	case errors.Is(err, ErrSourceNotFound):
		out.Kind, out.Reason = KindIO, "unable to find image"
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		out.Kind, out.Reason = KindIO, "unexpected end of stream"
	default:
		out.Kind, out.Reason = KindIO, "read failed"
	}

	return out
}
