package dds

import (
	"github.com/woozymasta/bcn"
)

// DXGI formats understood through the DX10 header extension.
const (
	dxgiR8G8B8A8UNorm = 28
	dxgiBC1UNorm      = 71
	dxgiBC2UNorm      = 74
	dxgiBC3UNorm      = 77
	dxgiBC4UNorm      = 80
	dxgiBC5UNorm      = 83
	dxgiB8G8R8A8UNorm = 87
)

// formatOf picks the payload format from the pixel format or the DX10 extension.
func formatOf(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) bcn.Format {
	if dx10 != nil {
		return dxgiFormat(dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	switch {
	case pf.Flags&bcn.DDSPFFourCC != 0:
		return fourCCFormat(pf.FourCC)

	case pf.Flags&bcn.DDSPFRGB != 0 && pf.Flags&bcn.DDSPFAlphaPixels != 0 && pf.RGBBitCount == 32:
		if pf.GBitMask != 0x0000ff00 || pf.ABitMask != 0xff000000 {
			return bcn.FormatUnknown
		}
		switch {
		case pf.RBitMask == 0x000000ff && pf.BBitMask == 0x00ff0000:
			return bcn.FormatRGBA8
		case pf.RBitMask == 0x00ff0000 && pf.BBitMask == 0x000000ff:
			return bcn.FormatBGRA8
		}
	}

	return bcn.FormatUnknown
}

func fourCCFormat(fourCC uint32) bcn.Format {
	switch string([]byte{byte(fourCC), byte(fourCC >> 8), byte(fourCC >> 16), byte(fourCC >> 24)}) {
	case "DXT1":
		return bcn.FormatDXT1
	case "DXT2", "DXT3":
		return bcn.FormatDXT3
	case "DXT4", "DXT5":
		return bcn.FormatDXT5
	case "ATI1", "BC4U", "BC4S":
		return bcn.FormatBC4
	case "ATI2", "BC5U", "BC5S":
		return bcn.FormatBC5
	default:
		return bcn.FormatUnknown
	}
}

func dxgiFormat(format uint32) bcn.Format {
	switch format {
	case dxgiBC1UNorm:
		return bcn.FormatDXT1
	case dxgiBC2UNorm:
		return bcn.FormatDXT3
	case dxgiBC3UNorm:
		return bcn.FormatDXT5
	case dxgiBC4UNorm:
		return bcn.FormatBC4
	case dxgiBC5UNorm:
		return bcn.FormatBC5
	case dxgiB8G8R8A8UNorm:
		return bcn.FormatBGRA8
	case dxgiR8G8B8A8UNorm:
		return bcn.FormatRGBA8
	default:
		return bcn.FormatUnknown
	}
}

// levelSize returns the byte size of one level, or -1 for unknown formats.
func levelSize(format bcn.Format, width, height int) int {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	switch format {
	case bcn.FormatDXT1, bcn.FormatBC4:
		return blocksW * blocksH * 8
	case bcn.FormatDXT3, bcn.FormatDXT5, bcn.FormatBC5:
		return blocksW * blocksH * 16
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return width * height * 4
	default:
		return -1
	}
}

// mipCount returns the number of stored levels, at least 1.
func mipCount(header *bcn.DDSHeader) int {
	if header.Caps&bcn.DDSCapsMipmap != 0 && header.MipMapCount > 0 {
		return int(header.MipMapCount)
	}

	return 1
}
