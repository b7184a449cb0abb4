package gputex

import "fmt"

// GPUFormat is an OpenGL internal format enum understood by the upload layer.
type GPUFormat uint32

// Formats produced by the built-in decoders. KTX passes glInternalFormat
// through, so other values are possible.
const (
	FormatRGBA8                            GPUFormat = 0x8058
	FormatETC1RGB8                         GPUFormat = 0x8D64
	FormatCompressedR11EAC                 GPUFormat = 0x9270
	FormatCompressedSignedR11EAC           GPUFormat = 0x9271
	FormatCompressedRG11EAC                GPUFormat = 0x9272
	FormatCompressedSignedRG11EAC          GPUFormat = 0x9273
	FormatCompressedRGB8ETC2               GPUFormat = 0x9274
	FormatCompressedRGB8PunchthroughAlpha1 GPUFormat = 0x9276
	FormatCompressedRGBA8ETC2EAC           GPUFormat = 0x9278
)

var formatNames = map[GPUFormat]string{
	FormatRGBA8:                            "RGBA8",
	FormatETC1RGB8:                         "ETC1_RGB8_OES",
	FormatCompressedR11EAC:                 "COMPRESSED_R11_EAC",
	FormatCompressedSignedR11EAC:           "COMPRESSED_SIGNED_R11_EAC",
	FormatCompressedRG11EAC:                "COMPRESSED_RG11_EAC",
	FormatCompressedSignedRG11EAC:          "COMPRESSED_SIGNED_RG11_EAC",
	FormatCompressedRGB8ETC2:               "COMPRESSED_RGB8_ETC2",
	FormatCompressedRGB8PunchthroughAlpha1: "COMPRESSED_RGB8_PUNCHTHROUGH_ALPHA1_ETC2",
	FormatCompressedRGBA8ETC2EAC:           "COMPRESSED_RGBA8_ETC2_EAC",
}

func (f GPUFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint32(f))
}

// Compressed reports whether f is one of the ETC/EAC formats.
func (f GPUFormat) Compressed() bool {
	_, known := formatNames[f]
	return known && f != FormatRGBA8
}

// Texture is a decoded texture ready for upload. It is not modified after
// construction; Data belongs to the caller once returned.
type Texture struct {
	width  uint32
	height uint32
	format GPUFormat
	data   []byte
}

func newTexture(width, height uint32, format GPUFormat, data []byte) *Texture {
	return &Texture{width: width, height: height, format: format, data: data}
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the GPU format tag.
func (t *Texture) Format() GPUFormat { return t.format }

// Data returns the pixel or compressed block data.
func (t *Texture) Data() []byte { return t.data }

// Len returns the data size in bytes.
func (t *Texture) Len() int { return len(t.data) }

func (t *Texture) String() string {
	return fmt.Sprintf("%dx%d %s (%d bytes)", t.width, t.height, t.format, len(t.data))
}
