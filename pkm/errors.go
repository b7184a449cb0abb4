package pkm

import "errors"

var (
	// ErrHeaderRead indicates fewer than 16 header bytes were available.
	ErrHeaderRead = errors.New("reading PKM header failed")
	// ErrInvalidMagic indicates the first 6 bytes are neither "PKM 10" nor "PKM 20".
	ErrInvalidMagic = errors.New("invalid PKM magic")
	// ErrUnsupportedFormat indicates an unrecognized format code.
	ErrUnsupportedFormat = errors.New("unsupported PKM format code")
	// ErrInconsistentDimensions indicates encoded and actual sizes disagree.
	ErrInconsistentDimensions = errors.New("inconsistent PKM dimensions")
	// ErrTruncatedPayload indicates the stream ended inside the payload.
	ErrTruncatedPayload = errors.New("truncated PKM payload")
)
