package employees

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timeflow-backend/internal/enrollment"
	"timeflow-backend/internal/face"
	"timeflow-backend/internal/platform/auth"
)

type memEmployees struct {
	mu    sync.Mutex
	byID  map[string]*Employee
	depts map[int64]string
}

func newMemEmployees() *memEmployees {
	return &memEmployees{byID: map[string]*Employee{}, depts: map[int64]string{1: "Engineering"}}
}

func (m *memEmployees) GetByECNumber(ctx context.Context, ec string) (*Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[ec]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.DepartmentName = m.depts[e.DepartmentID]
	return &cp, nil
}

func (m *memEmployees) Create(ctx context.Context, e *Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ECNumber]; ok {
		return ErrAlreadyExists
	}
	cp := *e
	m.byID[e.ECNumber] = &cp
	return nil
}

func (m *memEmployees) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.depts[id]
	return ok, nil
}

type stubEnroller struct {
	err   error
	calls []string
}

func (s *stubEnroller) Enroll(ctx context.Context, ec string, img []byte) (enrollment.Result, error) {
	s.calls = append(s.calls, ec)
	if s.err != nil {
		return enrollment.Result{}, s.err
	}
	return enrollment.Result{ECNumber: ec, Box: face.BoundingBox{Width: 120, Height: 130}}, nil
}

const secret = "emp-secret"

func newService(enr *stubEnroller) (*Service, *memEmployees) {
	store := newMemEmployees()
	return NewService(store, enr, auth.NewIssuer([]byte(secret), time.Hour), 1<<20), store
}

var anyImage = base64.StdEncoding.EncodeToString([]byte("jpeg-ish bytes"))

func validRequest(ec string) RegisterRequest {
	return RegisterRequest{ECNumber: ec, Name: "Tariro", Password: "hunter22", DepartmentID: 1, ImageBase64: anyImage}
}

func TestRegisterEnrolls(t *testing.T) {
	enr := &stubEnroller{}
	svc, store := newService(enr)
	res, err := svc.Register(context.Background(), validRequest("EC1"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.FaceEnrolled || res.EnrollmentError != "" {
		t.Fatalf("res = %+v", res)
	}
	if len(enr.calls) != 1 {
		t.Fatalf("enroll calls = %v", enr.calls)
	}
	e, _ := store.GetByECNumber(context.Background(), "EC1")
	if e.Role != auth.RoleEmployee || e.PasswordHash == "hunter22" {
		t.Fatalf("stored employee = %+v", e)
	}
}

func TestRegisterSucceedsWhenEnrollmentFails(t *testing.T) {
	cases := map[string]error{
		"NO_FACE_DETECTED":  enrollment.ErrNoFaceDetected,
		"FACE_TOO_SMALL":    enrollment.ErrFaceTooSmall,
		"EXTRACTION_FAILED": enrollment.ErrExtractionFailed,
	}
	for reason, enrErr := range cases {
		svc, store := newService(&stubEnroller{err: enrErr})
		res, err := svc.Register(context.Background(), validRequest("EC1"))
		if err != nil {
			t.Fatalf("%s: registration failed: %v", reason, err)
		}
		if res.FaceEnrolled || res.EnrollmentError != reason {
			t.Fatalf("%s: res = %+v", reason, res)
		}
		if e, _ := store.GetByECNumber(context.Background(), "EC1"); e == nil {
			t.Fatalf("%s: employee not stored", reason)
		}
	}
}

func TestRegisterWithoutImage(t *testing.T) {
	enr := &stubEnroller{}
	svc, _ := newService(enr)
	req := validRequest("EC1")
	req.ImageBase64 = ""
	res, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.FaceEnrolled || res.EnrollmentError != "NO_IMAGE" || len(enr.calls) != 0 {
		t.Fatalf("res = %+v calls = %v", res, enr.calls)
	}
}

func TestRegisterRejects(t *testing.T) {
	svc, _ := newService(&stubEnroller{})
	ctx := context.Background()
	if _, err := svc.Register(ctx, validRequest("EC1")); err != nil {
		t.Fatal(err)
	}

	dup := validRequest("EC1")
	if _, err := svc.Register(ctx, dup); toHTTPStatus(err) != http.StatusConflict {
		t.Fatalf("duplicate: %v", err)
	}

	badDept := validRequest("EC2")
	badDept.DepartmentID = 99
	if _, err := svc.Register(ctx, badDept); toHTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("bad department: %v", err)
	}

	badImg := validRequest("EC3")
	badImg.ImageBase64 = "***"
	if _, err := svc.Register(ctx, badImg); toHTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("bad image: %v", err)
	}
	if e, _ := svc.store.GetByECNumber(ctx, "EC3"); e != nil {
		t.Fatal("employee created despite undecodable image")
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(&stubEnroller{})
	ctx := context.Background()
	_, _ = svc.Register(ctx, validRequest("EC1"))

	res, err := svc.Login(ctx, "EC1", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if res.Token == "" || res.Employee.DepartmentName != "Engineering" {
		t.Fatalf("res = %+v", res)
	}
	for _, tc := range [][2]string{{"EC1", "wrong-pass"}, {"ec1", "hunter22"}, {"NOPE", "hunter22"}} {
		if _, err := svc.Login(ctx, tc[0], tc[1]); toHTTPStatus(err) != http.StatusUnauthorized {
			t.Errorf("%v: %v", tc, err)
		}
	}
}

func TestEnrollErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{enrollment.ErrNoFaceDetected, 400},
		{enrollment.ErrFaceTooSmall, 400},
		{enrollment.ErrEmployeeNotFound, 404},
		{enrollment.ErrExtractionFailed, 503},
		{errors.New("db down"), 500},
	}
	for _, tc := range cases {
		svc, _ := newService(&stubEnroller{err: tc.err})
		_, err := svc.Enroll(context.Background(), "EC1", anyImage)
		if toHTTPStatus(err) != tc.status {
			t.Errorf("%v: status %d, want %d", tc.err, toHTTPStatus(err), tc.status)
		}
	}
	svc, _ := newService(&stubEnroller{})
	res, err := svc.Enroll(context.Background(), "EC1", anyImage)
	if err != nil || !res.Enrolled || res.FaceBox[2] != 120 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newService(&stubEnroller{})
	r := gin.New()
	RegisterRoutes(r.Group("/api"), r.Group("/api", auth.RequireAuth([]byte(secret))), svc)

	post := func(path, tok string, body any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post("/api/employees/register", "", map[string]any{"ec_number": "bad id!", "name": "x", "password": "123456", "department_id": 1}); w.Code != http.StatusBadRequest {
		t.Fatalf("validation: %d", w.Code)
	}
	if w := post("/api/employees/register", "", validRequest("EC9")); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w := post("/api/employees/login", "", LoginRequest{ECNumber: "EC9", Password: "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d", w.Code)
	}
	var login LoginResponse
	_ = json.Unmarshal(w.Body.Bytes(), &login)

	req := httptest.NewRequest(http.MethodGet, "/api/employees/EC9", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	gw := httptest.NewRecorder()
	r.ServeHTTP(gw, req)
	if gw.Code != http.StatusOK {
		t.Fatalf("get self: %d", gw.Code)
	}

	if w := post("/api/employees/OTHER/enroll", login.Token, EnrollRequest{ImageBase64: anyImage}); w.Code != http.StatusForbidden {
		t.Fatalf("enroll other: %d", w.Code)
	}
	if w := post("/api/employees/EC9/enroll", login.Token, EnrollRequest{ImageBase64: anyImage}); w.Code != http.StatusOK {
		t.Fatalf("enroll self: %d %s", w.Code, w.Body.String())
	}
}

func TestHandlersCapImageBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, store := newService(&stubEnroller{}) // 1 MiB image limit
	r := gin.New()
	RegisterRoutes(r.Group("/api"), r.Group("/api", auth.RequireAuth([]byte(secret))), svc)
	tok, err := auth.NewIssuer([]byte(secret), time.Hour).Issue("EC1", auth.RoleEmployee)
	if err != nil {
		t.Fatal(err)
	}

	huge := strings.Repeat("A", 4<<20)
	for _, path := range []string{"/api/employees/register", "/api/employees/EC1/enroll"} {
		body := `{"ec_number":"EC1","name":"x","password":"hunter22","department_id":1,"image_base64":"` + huge + `"}`
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var got errDTO
		_ = json.Unmarshal(w.Body.Bytes(), &got)
		if w.Code != http.StatusBadRequest || got.Error == nil || got.Error.Reason != "IMAGE_TOO_LARGE" {
			t.Errorf("%s: %d %s", path, w.Code, w.Body.String())
		}
	}
	if e, _ := store.GetByECNumber(context.Background(), "EC1"); e != nil {
		t.Fatal("oversized registration created an employee")
	}
}
