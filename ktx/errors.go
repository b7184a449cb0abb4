package ktx

import "errors"

var (
	// ErrNotKTX indicates the 12-byte identifier did not match (or was short).
	ErrNotKTX = errors.New("not a KTX file")
	// ErrBadEndianness indicates an unknown endianness marker.
	ErrBadEndianness = errors.New("bad KTX endianness marker")
	// ErrHeaderRead indicates the fixed header could not be read.
	ErrHeaderRead = errors.New("reading KTX header failed")
	// ErrTruncatedMetadata indicates the key/value block is shorter than declared.
	ErrTruncatedMetadata = errors.New("truncated KTX key/value data")
	// ErrImageSizeRead indicates the level 0 imageSize could not be read.
	ErrImageSizeRead = errors.New("reading KTX image size failed")
	// ErrNonPositiveImageSize indicates imageSize <= 0.
	ErrNonPositiveImageSize = errors.New("non-positive image size")
	// ErrTruncatedImageData indicates the stream ended inside the level 0 data.
	ErrTruncatedImageData = errors.New("truncated KTX image data")

	// ErrUnsupportedFeature is wrapped by every texture-shape rejection below.
	ErrUnsupportedFeature = errors.New("unsupported KTX feature")
	// ErrUnsupported3D indicates pixelDepth > 0.
	ErrUnsupported3D = errors.New("3D texture")
	// ErrUnsupportedArray indicates numberOfArrayElements > 0.
	ErrUnsupportedArray = errors.New("texture array")
	// ErrUnsupportedCubemap indicates numberOfFaces != 1.
	ErrUnsupportedCubemap = errors.New("cubemap")
	// ErrUnsupportedMipmaps indicates numberOfMipmapLevels != 1.
	ErrUnsupportedMipmaps = errors.New("mipmap chain")

	// ErrInvalidKeyValue indicates a malformed key/value pair.
	ErrInvalidKeyValue = errors.New("invalid KTX key/value pair")
)

// featureError pairs ErrUnsupportedFeature with the specific feature.
type featureError struct {
	feature error
	detail  string
}

func (e *featureError) Error() string {
	return ErrUnsupportedFeature.Error() + ": " + e.feature.Error() + " (" + e.detail + ")"
}

func (e *featureError) Is(target error) bool {
	return target == ErrUnsupportedFeature || target == e.feature
}
