package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Get(c)) })

	keep := uuid.NewString()
	cases := map[string]func(string) bool{
		keep:       func(got string) bool { return got == keep },
		"":         func(got string) bool { _, err := uuid.Parse(got); return err == nil },
		"not-uuid": func(got string) bool { return got != "not-uuid" && got != "" },
	}
	for in, ok := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header.Set(Header, in)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if !ok(w.Body.String()) || w.Header().Get(Header) != w.Body.String() {
			t.Errorf("in=%q: body=%q header=%q", in, w.Body.String(), w.Header().Get(Header))
		}
	}
}
