package face

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

// DecodeBase64Image accepts raw base64 or a data URL
// ("data:image/jpeg;base64,...") and returns the image bytes.
func DecodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 || !strings.Contains(s[:i], ";base64") {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidImage)
		}
		s = s[i+1:]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some capture libraries drop padding
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64", ErrInvalidImage)
		}
	}
	return b, nil
}

// EncodeBase64Image is the inverse of DecodeBase64Image without the data
// URL prefix.
func EncodeBase64Image(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// CheckImage enforces the byte limit and that b is a JPEG or PNG. It reads
// only the header, never the full pixel data.
func CheckImage(b []byte, maxBytes int) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if maxBytes > 0 && len(b) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(b), maxBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: zero size", ErrInvalidImage)
	}
	return nil
}

// EncodedLen returns the decoded size of a base64 payload so oversized
// uploads can be refused before decoding.
func EncodedLen(s string) int {
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodedLen(len(strings.TrimSpace(s)))
}
