package dds

import "errors"

var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrLZ4Decode indicates LZ4 decode failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrCopySizeMismatch indicates COPY block data size mismatch.
	ErrCopySizeMismatch = errors.New("COPY block size mismatch")
	// ErrUnknownBlockMagic indicates an unknown block magic.
	ErrUnknownBlockMagic = errors.New("unknown block magic")
	// ErrInvalidTargetSize indicates invalid decoded target size.
	ErrInvalidTargetSize = errors.New("invalid target size")
	// ErrChunkStreamTruncated indicates LZ4 chunk stream is truncated.
	ErrChunkStreamTruncated = errors.New("LZ4 chunk-stream truncated")
	// ErrUnknownLZ4Flags indicates unknown LZ4 chunk flags.
	ErrUnknownLZ4Flags = errors.New("unknown LZ4 flags")
	// ErrInvalidChunkSize indicates invalid LZ4 chunk size.
	ErrInvalidChunkSize = errors.New("invalid compressed chunk size")
	// ErrDecodeOverrun indicates decoded data overruns target buffer.
	ErrDecodeOverrun = errors.New("decoded LZ4 overruns target buffer")
	// ErrDecodedSizeMismatch indicates decoded size mismatch.
	ErrDecodedSizeMismatch = errors.New("LZ4 decoded size mismatch")
	// ErrBlockLengthMismatch indicates leftover bytes after decode.
	ErrBlockLengthMismatch = errors.New("LZ4 block length mismatch")
	// ErrBlockTableRead indicates a block table entry could not be read.
	ErrBlockTableRead = errors.New("reading block table failed")
	// ErrBlockTableInvalidSize indicates invalid size in block table.
	ErrBlockTableInvalidSize = errors.New("invalid block size in table")
	// ErrBlockBodyRead indicates block body read failed.
	ErrBlockBodyRead = errors.New("reading block body failed")
	// ErrHeaderRead indicates the DDS header (or its DX10 extension) read failed.
	ErrHeaderRead = errors.New("reading DDS header failed")
	// ErrReadData indicates the image data could not be read.
	ErrReadData = errors.New("reading DDS data failed")
	// ErrUnknownFormat indicates unsupported DDS/EDDS format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrDecompressBlock indicates block decompression failed.
	ErrDecompressBlock = errors.New("decompress block failed")
	// ErrLargestMipSizeMismatch indicates mismatch in largest mip size.
	ErrLargestMipSizeMismatch = errors.New("largest mip size mismatch")
	// ErrTruncatedData indicates a plain DDS payload shorter than its level 0.
	ErrTruncatedData = errors.New("truncated DDS data")
	// ErrDecodeImage indicates BCn decode failed.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrChunkHeaderRead indicates LZ4 chunk header read failed.
	ErrChunkHeaderRead = errors.New("reading chunk header failed")
	// ErrChunkDataRead indicates LZ4 chunk data read failed.
	ErrChunkDataRead = errors.New("reading chunk data failed")
)
