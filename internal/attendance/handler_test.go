package attendance

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/platform/auth"
	"timeflow-backend/internal/verification"
)

var testSecret = []byte("handler-secret")

func newTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	r := gin.New()
	api := r.Group("/api", auth.RequireAuth(testSecret))
	RegisterRoutes(api, f.svc)
	return r, f
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := auth.NewIssuer(testSecret, time.Hour).Issue(sub, role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func send(r http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func reasonOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorDTO
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == nil {
		t.Fatalf("not an error body: %s", w.Body.String())
	}
	return body.Error.Reason
}

func TestHandlerCheckInCheckOut(t *testing.T) {
	r, f := newTestRouter(t)
	emp := token(t, "EC1", auth.RoleEmployee)
	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString(f.img)

	w := send(r, http.MethodPost, "/api/check-out", emp, PunchRequest{ImageBase64: img})
	if w.Code != http.StatusNotFound || reasonOf(t, w) != "NO_CHECK_IN_FOUND" {
		t.Fatalf("early check-out: %d %s", w.Code, w.Body.String())
	}

	f.clock.set(at("09:15:00"))
	w = send(r, http.MethodPost, "/api/check-in", emp, PunchRequest{ImageBase64: img})
	if w.Code != http.StatusCreated {
		t.Fatalf("check-in: %d %s", w.Code, w.Body.String())
	}
	var in CheckInResponse
	_ = json.Unmarshal(w.Body.Bytes(), &in)
	if in.ECNumber != "EC1" || !in.IsLate || !in.Verified || in.Outcome != "matched" {
		t.Fatalf("check-in body: %+v", in)
	}

	w = send(r, http.MethodPost, "/api/check-in", emp, PunchRequest{ImageBase64: img})
	if w.Code != http.StatusConflict || reasonOf(t, w) != "ALREADY_CHECKED_IN" {
		t.Fatalf("second check-in: %d %s", w.Code, w.Body.String())
	}

	f.ver.set(verification.NotMatched)
	f.clock.set(at("17:45:00"))
	w = send(r, http.MethodPost, "/api/check-out", emp, PunchRequest{ImageBase64: img})
	if w.Code != http.StatusOK {
		t.Fatalf("check-out: %d %s", w.Code, w.Body.String())
	}
	var out CheckOutResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.TotalHours != 8.5 || out.Verified || out.Outcome != "not_matched" {
		t.Fatalf("check-out body: %+v", out)
	}

	w = send(r, http.MethodPost, "/api/check-out", emp, PunchRequest{ImageBase64: img})
	if w.Code != http.StatusConflict || reasonOf(t, w) != "ALREADY_CHECKED_OUT" {
		t.Fatalf("second check-out: %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodGet, "/api/attendance/today", emp, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("today: %d", w.Code)
	}
	var rec RecordResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.CheckOutVerified == nil || *rec.CheckOutVerified || !rec.CheckInVerified {
		t.Fatalf("today body: %s", w.Body.String())
	}
}

func TestHandlerRejectsBadInput(t *testing.T) {
	r, f := newTestRouter(t)
	emp := token(t, "EC1", auth.RoleEmployee)
	img := base64.StdEncoding.EncodeToString(f.img)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"missing image", map[string]string{"ec_number": "EC1"}, http.StatusBadRequest},
		{"bad base64", PunchRequest{ImageBase64: "%%%%"}, http.StatusBadRequest},
		{"not an image", PunchRequest{ImageBase64: base64.StdEncoding.EncodeToString([]byte("hello"))}, http.StatusBadRequest},
		{"someone else", PunchRequest{ECNumber: "EC2", ImageBase64: img}, http.StatusForbidden},
	}
	for _, tc := range cases {
		w := send(r, http.MethodPost, "/api/check-in", emp, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s: got %d, want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
	if f.store.inserts != 0 {
		t.Fatal("rejected request created a record")
	}
}

func TestHandlerAdminMayPunchForOthers(t *testing.T) {
	r, f := newTestRouter(t)
	adm := token(t, "ADMIN", auth.RoleAdmin)
	img := base64.StdEncoding.EncodeToString(f.img)
	w := send(r, http.MethodPost, "/api/check-in", adm, PunchRequest{ECNumber: "EC2", ImageBase64: img})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin punch: %d %s", w.Code, w.Body.String())
	}
	w = send(r, http.MethodGet, "/api/attendance/today?ec_number=EC2", adm, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin today: %d", w.Code)
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestHandlerCapsOversizedBody(t *testing.T) {
	r, f := newTestRouter(t)
	emp := token(t, "EC1", auth.RoleEmployee)

	// fixture allows 1 MiB images; send ~8 MiB of base64
	payload := `{"image_base64":"` + strings.Repeat("A", 8<<20) + `"}`
	body := &countingReader{r: strings.NewReader(payload)}
	req := httptest.NewRequest(http.MethodPost, "/api/check-in", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+emp)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest || reasonOf(t, w) != "IMAGE_TOO_LARGE" {
		t.Fatalf("oversized body: %d %s", w.Code, w.Body.String())
	}
	if body.n >= len(payload)/2 {
		t.Fatalf("read %d of %d bytes before rejecting", body.n, len(payload))
	}
	if f.store.inserts != 0 {
		t.Fatal("oversized request created a record")
	}
}
