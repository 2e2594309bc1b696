// Package bodylimit caps request bodies before they are bound.
package bodylimit

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// jsonSlack covers the JSON envelope, other fields and a data: URL prefix.
const jsonSlack = 64 << 10

// ForImage returns the body cap for a JSON request carrying one base64
// image of at most maxImageBytes decoded bytes. Zero means no cap.
func ForImage(maxImageBytes int) int64 {
	if maxImageBytes <= 0 {
		return 0
	}
	return int64(base64.StdEncoding.EncodedLen(maxImageBytes)) + jsonSlack
}

// Middleware stops reading the body after n bytes; the bind then fails
// with an error IsTooLarge recognises. n <= 0 disables the cap.
func Middleware(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func IsTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
