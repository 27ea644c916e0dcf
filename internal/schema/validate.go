package schema

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strings"
	"unicode/utf8"

	// Register decoders for the formats LAKE accepts as still images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// validateImage checks that the datastream is a decodable image and reports
// its format, dimensions and detected MIME type.
func validateImage(name string, data []byte) (DatastreamMeta, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return DatastreamMeta{}, fmt.Errorf("datastream %s is not a decodable image: %w", name, err)
	}

	return DatastreamMeta{
		Format:   format,
		MimeType: http.DetectContentType(data),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// validateText accepts any valid UTF-8 stream.
func validateText(name string, data []byte) (DatastreamMeta, error) {
	if !utf8.Valid(data) {
		return DatastreamMeta{}, fmt.Errorf("datastream %s is not valid UTF-8 text", name)
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i > 0 {
		mimeType = mimeType[:i]
	}

	return DatastreamMeta{Format: "text", MimeType: mimeType}, nil
}
