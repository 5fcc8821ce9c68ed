package media

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Image carries a decoded data URI payload.
type Image struct {
	ContentType string
	Data        []byte
}

// extensions maps accepted image content types to file extensions.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodeDataURI decodes a "data:image/...;base64,..." payload.
// maxSize bounds the decoded byte length; 0 means unbounded.
func DecodeDataURI(payload string, maxSize int64) (*Image, error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return nil, ErrInvalidImage
	}

	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidImage
	}

	contentType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return nil, ErrInvalidImage
	}
	if _, known := extensions[contentType]; !known {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrImageTooLarge
	}

	return &Image{ContentType: contentType, Data: data}, nil
}

// NewObjectKey generates a unique storage key for an image with the
// extension matching its content type.
func NewObjectKey(contentType string) string {
	return uuid.NewString() + extensions[contentType]
}
