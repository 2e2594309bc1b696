package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/japanese"
)

type fakeStore struct {
	rows     []Row
	pending  []ReviewRow
	gotDate  string
	gotLimit int
	err      error
}

func (f *fakeStore) Daily(ctx context.Context, d string) ([]Row, error) {
	f.gotDate = d
	return f.rows, f.err
}

func (f *fakeStore) Lateness(ctx context.Context, d string) ([]Row, error) {
	f.gotDate = d
	var out []Row
	for _, r := range f.rows {
		if r.IsLate {
			out = append(out, r)
		}
	}
	return out, f.err
}

func (f *fakeStore) PendingReview(ctx context.Context, d string) ([]ReviewRow, error) {
	f.gotDate = d
	return f.pending, f.err
}

func (f *fakeStore) EmployeeHistory(ctx context.Context, ec string, limit int) ([]Row, error) {
	f.gotLimit = limit
	return f.rows, f.err
}

type fixedDay string

func (d fixedDay) Today() string { return string(d) }

func ptr[T any](v T) *T { return &v }

func sampleRows() []Row {
	in := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return []Row{
		{ECNumber: "EC1", Name: "山田 太郎", WorkDate: "2024-03-01", CheckInTime: in, IsLate: true, CheckInVerified: true},
		{ECNumber: "EC2", Name: "Rudo", WorkDate: "2024-03-01", CheckInTime: in.Add(-time.Hour),
			CheckOutTime: ptr(in.Add(7 * time.Hour)), TotalHours: ptr(8.004), CheckInVerified: false, CheckOutVerified: ptr(true)},
	}
}

func TestDailyDefaultsToToday(t *testing.T) {
	st := &fakeStore{rows: sampleRows()}
	svc := NewService(st, fixedDay("2024-03-01"))
	res, err := svc.Daily(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if st.gotDate != "2024-03-01" || res.Present != 2 || res.Late != 1 || res.Unchecked != 1 {
		t.Fatalf("res = %+v date=%s", res, st.gotDate)
	}
	if *res.Records[1].TotalHours != 8.0 {
		t.Fatalf("hours = %v", *res.Records[1].TotalHours)
	}
}

func TestInvalidDate(t *testing.T) {
	svc := NewService(&fakeStore{}, fixedDay("2024-03-01"))
	for _, d := range []string{"2024-13-01", "03/01/2024", "yesterday"} {
		if _, err := svc.Daily(context.Background(), d); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: err = %v", d, err)
		}
	}
}

func TestHistoryLimit(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st, fixedDay("2024-03-01"))
	for _, tc := range [][2]int{{0, DefaultHistoryLimit}, {-5, DefaultHistoryLimit}, {7, 7}, {10000, MaxHistoryLimit}} {
		if _, err := svc.EmployeeHistory(context.Background(), "EC1", tc[0]); err != nil {
			t.Fatal(err)
		}
		if st.gotLimit != tc[1] {
			t.Errorf("limit %d -> %d, want %d", tc[0], st.gotLimit, tc[1])
		}
	}
}

func TestPendingReviewEncodesSelfies(t *testing.T) {
	rows := sampleRows()
	st := &fakeStore{pending: []ReviewRow{{Row: rows[1], CheckInOutcome: "not_matched", CheckInSelfie: []byte{1, 2, 3}}}}
	svc := NewService(st, fixedDay("2024-03-01"))
	res, err := svc.PendingReview(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Records[0].CheckInSelfie != "AQID" || res.Records[0].CheckOutSelfie != "" {
		t.Fatalf("res = %+v", res)
	}
}

func TestWriteDailyCSV(t *testing.T) {
	svc := NewService(&fakeStore{rows: sampleRows()}, fixedDay("2024-03-01"))
	rep, _ := svc.Daily(context.Background(), "")

	var utf bytes.Buffer
	if err := WriteDailyCSV(&utf, rep, time.UTC, false); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(utf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ec_number,") {
		t.Fatalf("csv = %q", utf.String())
	}
	if !strings.Contains(lines[2], "8.00") || !strings.Contains(lines[1], "山田 太郎") {
		t.Fatalf("rows = %q", lines[1:])
	}

	var sj bytes.Buffer
	if err := WriteDailyCSV(&sj, rep, time.UTC, true); err != nil {
		t.Fatal(err)
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(sj.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != utf.String() {
		t.Fatalf("sjis round trip mismatch:\n%s\n%s", decoded, utf.String())
	}
	if bytes.Equal(sj.Bytes(), utf.Bytes()) {
		t.Fatal("sjis output identical to utf-8")
	}
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(&fakeStore{rows: sampleRows()}, fixedDay("2024-03-01")), time.UTC)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/reports/lateness?date=2024-03-01")
	if w.Code != http.StatusOK {
		t.Fatalf("lateness: %d", w.Code)
	}
	var late ListResponse[RowResponse]
	_ = json.Unmarshal(w.Body.Bytes(), &late)
	if late.Count != 1 || late.Records[0].ECNumber != "EC1" {
		t.Fatalf("late = %+v", late)
	}

	if w := get("/reports/daily?date=bogus"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
	if w := get("/reports/employee/EC1?limit=x"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", w.Code)
	}
	w = get("/reports/daily.csv?encoding=sjis")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "Shift_JIS") {
		t.Fatalf("csv: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attendance_2024-03-01.csv") {
		t.Fatalf("disposition = %s", w.Header().Get("Content-Disposition"))
	}
}

func TestStoreErrorIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(&fakeStore{err: errors.New("db down")}, fixedDay("2024-03-01")), time.UTC)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/pending", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", w.Code)
	}
}
