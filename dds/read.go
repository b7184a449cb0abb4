package dds

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/woozymasta/bcn"
)

// Magic is the byte prefix of DDS and EDDS files.
const Magic = "DDS "

const (
	// maxDimension bounds width and height taken from the header.
	maxDimension = 1 << 15
	// maxLevelSize bounds the level-0 buffer allocated for decoding.
	maxLevelSize = 1 << 30
)

func init() {
	image.RegisterFormat("dds", Magic, Decode, DecodeConfig)
}

// Options configures decoding.
type Options struct {
	// DecodeOptions are passed to the BCn decoder (e.g. Workers).
	DecodeOptions *bcn.DecodeOptions
}

// DecodeConfig reads the image size without decoding pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	header, _, err := readHeaders(r)
	if err != nil {
		return image.Config{}, err
	}

	w, err := intFromU32(header.Width)
	if err != nil {
		return image.Config{}, err
	}
	h, err := intFromU32(header.Height)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{Width: w, Height: h, ColorModel: color.RGBAModel}, nil
}

// Decode reads a DDS or EDDS stream and decodes its largest level.
func Decode(r io.Reader) (image.Image, error) {
	return DecodeWithOptions(r, nil)
}

// DecodeWithOptions is Decode with BCn decoder options. Nil opts uses defaults.
func DecodeWithOptions(r io.Reader, opts *Options) (image.Image, error) {
	header, dx10, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	width, err := intFromU32(header.Width)
	if err != nil {
		return nil, err
	}
	height, err := intFromU32(header.Height)
	if err != nil {
		return nil, err
	}

	if width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrSizeOverflow, width, height, maxDimension)
	}

	format := formatOf(header, dx10)
	expected := levelSize(format, width, height)
	if expected <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if expected > maxLevelSize {
		return nil, fmt.Errorf("%w: level 0 needs %d bytes", ErrSizeOverflow, expected)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadData, err)
	}

	var level0 []byte
	switch {
	case isBlockMagic(rest) && (len(rest) < expected || blockLayoutMatches(rest, mipCount(header))):
		level0, err = readLargestBlock(rest, format, width, height, mipCount(header))
	case len(rest) >= expected:
		level0 = rest[:expected]
	default:
		level0, err = readSingleBlock(rest, expected)
	}
	if err != nil {
		return nil, err
	}

	var decOpts *bcn.DecodeOptions
	if opts != nil {
		decOpts = opts.DecodeOptions
	}
	img, err := bcn.DecodeImageWithOptions(level0, width, height, format, decOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	return img, nil
}

// readLargestBlock walks the EDDS block table and inflates level 0, which is
// the last block since levels are stored smallest first. COPY blocks of the
// skipped levels must match their level size.
func readLargestBlock(data []byte, format bcn.Format, width, height, count int) ([]byte, error) {
	r := bytes.NewReader(data)
	table, err := readBlockTable(r, count)
	if err != nil {
		return nil, err
	}

	last := table[len(table)-1]
	for i, entry := range table[:len(table)-1] {
		level := len(table) - 1 - i
		if entry.Magic == BlockMagicCOPY {
			want := levelSize(format, mipDimension(width, level), mipDimension(height, level))
			if int(entry.Size) != want {
				return nil, fmt.Errorf("%w: level %d: expected %d, got %d", ErrCopySizeMismatch, level, want, entry.Size)
			}
		}
		if _, err := r.Seek(int64(entry.Size), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: skip %s: %v", ErrBlockBodyRead, entry.Magic, err)
		}
	}
	if int64(last.Size) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %s: need %d bytes, have %d", ErrBlockBodyRead, last.Magic, last.Size, r.Len())
	}

	body := make([]byte, last.Size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBlockBodyRead, last.Magic, err)
	}

	expected := levelSize(format, width, height)
	out, err := inflateBlock(last.Magic, body, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressBlock, err)
	}
	if len(out) != expected {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrLargestMipSizeMismatch, expected, len(out))
	}

	return out, nil
}

// readSingleBlock handles older EDDS files that store one LZ4 chunk stream
// after the header with no block table.
func readSingleBlock(data []byte, expected int) ([]byte, error) {
	out, err := inflateChunkStream(data, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: have %d of %d bytes: %v", ErrTruncatedData, len(data), expected, err)
	}

	return out, nil
}

// readHeaders reads the DDS magic, header and optional DX10 extension.
func readHeaders(r io.Reader) (*bcn.DDSHeader, *bcn.DDSHeaderDX10, error) {
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}

	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: DX10: %v", ErrHeaderRead, err)
	}

	return header, dx10, nil
}
