package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(secret []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", RequireAuth(secret))
	g.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, Subject(c)+"/"+c.GetString(CtxRoleKey))
	})
	g.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.GET("/act/:ec", func(c *gin.Context) {
		if CanActFor(c, c.Param("ec")) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusForbidden)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("s3cret")
	r := newRouter(secret)
	iss := NewIssuer(secret, time.Hour)

	tok, err := iss.Issue("EC100", RoleEmployee)
	if err != nil {
		t.Fatal(err)
	}
	if w := do(r, "/me", tok); w.Code != http.StatusOK || w.Body.String() != "EC100/employee" {
		t.Fatalf("valid token: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}

	other, _ := NewIssuer([]byte("other"), time.Hour).Issue("EC100", RoleAdmin)
	if w := do(r, "/me", other); w.Code != http.StatusUnauthorized {
		t.Fatalf("foreign signature: %d", w.Code)
	}

	expired := NewIssuer(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue("EC100", RoleEmployee)
	if w := do(r, "/me", old); w.Code != http.StatusUnauthorized {
		t.Fatalf("expired: %d", w.Code)
	}
}

func TestRequireRoleAndCanActFor(t *testing.T) {
	secret := []byte("s3cret")
	r := newRouter(secret)
	iss := NewIssuer(secret, time.Hour)
	emp, _ := iss.Issue("EC1", RoleEmployee)
	adm, _ := iss.Issue("ADM", RoleAdmin)

	cases := []struct {
		path, token string
		want        int
	}{
		{"/admin", emp, http.StatusForbidden},
		{"/admin", adm, http.StatusNoContent},
		{"/act/EC1", emp, http.StatusNoContent},
		{"/act/EC2", emp, http.StatusForbidden},
		{"/act/ec1", emp, http.StatusForbidden},
		{"/act/EC2", adm, http.StatusNoContent},
	}
	for _, tc := range cases {
		if w := do(r, tc.path, tc.token); w.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	if _, err := NewIssuer([]byte("k"), time.Minute).Issue("", RoleAdmin); err == nil {
		t.Fatal("expected error")
	}
}
