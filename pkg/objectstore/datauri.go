package objectstore

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,`)

var ErrNotDataURL = errors.New("not a base64 image data URL")

// IsDataURL reports whether s looks like data:image/<type>;base64,<payload>.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

// ParseDataURL splits an image data URL into its content type and decoded bytes.
func ParseDataURL(s string) (string, []byte, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return "", nil, ErrNotDataURL
	}
	payload := s[len(m[0]):]
	if payload == "" {
		return "", nil, errors.New("empty data URL payload")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(m[1]), data, nil
}

// Extension maps an image content type to a file extension for object keys.
func Extension(contentType string) string {
	sub := strings.TrimPrefix(contentType, "image/")
	switch sub {
	case "jpeg", "pjpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	case "png", "gif", "webp", "bmp", "avif", "heic":
		return sub
	default:
		return "bin"
	}
}
