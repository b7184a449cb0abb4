package pkm

import "fmt"

// Format is the PKM format code stored at header offset 6.
type Format uint16

// Supported PKM format codes. sRGB variants are not recognized.
const (
	FormatETC1RGB8               Format = 0x0000
	FormatRGB8ETC2               Format = 0x0001
	FormatRGBA8ETC2EAC           Format = 0x0003
	FormatRGB8PunchthroughAlpha1 Format = 0x0004
	FormatR11EAC                 Format = 0x0005
	FormatRG11EAC                Format = 0x0006
	FormatSignedR11EAC           Format = 0x0007
	FormatSignedRG11EAC          Format = 0x0008
)

// OpenGL compressed internal formats.
const (
	glETC1RGB8OES                  = 0x8D64
	glCompressedR11EAC             = 0x9270
	glCompressedSignedR11EAC       = 0x9271
	glCompressedRG11EAC            = 0x9272
	glCompressedSignedRG11EAC      = 0x9273
	glCompressedRGB8ETC2           = 0x9274
	glCompressedRGB8PunchthroughA1 = 0x9276
	glCompressedRGBA8ETC2EAC       = 0x9278
)

// Valid reports whether f is one of the recognized codes.
func (f Format) Valid() bool {
	return f.GLInternalFormat() != 0
}

// GLInternalFormat maps f to its OpenGL enum, or 0 when f is not recognized.
func (f Format) GLInternalFormat() uint32 {
	switch f {
	case FormatETC1RGB8:
		return glETC1RGB8OES
	case FormatRGB8ETC2:
		return glCompressedRGB8ETC2
	case FormatRGBA8ETC2EAC:
		return glCompressedRGBA8ETC2EAC
	case FormatRGB8PunchthroughAlpha1:
		return glCompressedRGB8PunchthroughA1
	case FormatR11EAC:
		return glCompressedR11EAC
	case FormatRG11EAC:
		return glCompressedRG11EAC
	case FormatSignedR11EAC:
		return glCompressedSignedR11EAC
	case FormatSignedRG11EAC:
		return glCompressedSignedRG11EAC
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatETC1RGB8:
		return "ETC1_RGB8"
	case FormatRGB8ETC2:
		return "RGB8_ETC2"
	case FormatRGBA8ETC2EAC:
		return "RGBA8_ETC2_EAC"
	case FormatRGB8PunchthroughAlpha1:
		return "RGB8_PUNCHTHROUGH_ALPHA1_ETC2"
	case FormatR11EAC:
		return "R11_EAC"
	case FormatRG11EAC:
		return "RG11_EAC"
	case FormatSignedR11EAC:
		return "SIGNED_R11_EAC"
	case FormatSignedRG11EAC:
		return "SIGNED_RG11_EAC"
	default:
		return fmt.Sprintf("PKM(0x%04x)", uint16(f))
	}
}
