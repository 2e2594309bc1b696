package reports

import (
	"context"
	"database/sql"
	"time"
)

type Row struct {
	ECNumber         string
	Name             string
	WorkDate         string
	CheckInTime      time.Time
	CheckOutTime     *time.Time
	TotalHours       *float64
	IsLate           bool
	CheckInVerified  bool
	CheckOutVerified *bool
}

type ReviewRow struct {
	Row
	CheckInOutcome  string
	CheckOutOutcome string
	CheckInSelfie   []byte
	CheckOutSelfie  []byte
}

type Store interface {
	Daily(ctx context.Context, workDate string) ([]Row, error)
	Lateness(ctx context.Context, workDate string) ([]Row, error)
	PendingReview(ctx context.Context, workDate string) ([]ReviewRow, error)
	EmployeeHistory(ctx context.Context, ecNumber string, limit int) ([]Row, error)
}

type SQLStore struct{ db *sql.DB }

func NewStore(conn *sql.DB) *SQLStore { return &SQLStore{db: conn} }

const rowColumns = `
	ar.ec_number, COALESCE(e.name, ''), DATE_FORMAT(ar.work_date, '%Y-%m-%d'),
	ar.check_in_time, ar.check_out_time, ar.total_hours, ar.is_late,
	ar.check_in_verified, ar.check_out_verified`

func scanRow(rows *sql.Rows, extra ...any) (Row, error) {
	var (
		r        Row
		out      sql.NullTime
		hours    sql.NullFloat64
		verified sql.NullBool
	)
	dest := append([]any{&r.ECNumber, &r.Name, &r.WorkDate, &r.CheckInTime, &out, &hours,
		&r.IsLate, &r.CheckInVerified, &verified}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return Row{}, err
	}
	r.CheckInTime = r.CheckInTime.UTC()
	if out.Valid {
		t := out.Time.UTC()
		r.CheckOutTime = &t
	}
	if hours.Valid {
		h := hours.Float64
		r.TotalHours = &h
	}
	if verified.Valid {
		v := verified.Bool
		r.CheckOutVerified = &v
	}
	return r, nil
}

func (s *SQLStore) queryRows(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Daily(ctx context.Context, workDate string) ([]Row, error) {
	return s.queryRows(ctx, `
	SELECT `+rowColumns+`
	FROM attendance_records ar
	LEFT JOIN employees e ON e.ec_number = ar.ec_number
	WHERE ar.work_date = ?
	ORDER BY ar.check_in_time, ar.ec_number`, workDate)
}

func (s *SQLStore) Lateness(ctx context.Context, workDate string) ([]Row, error) {
	return s.queryRows(ctx, `
	SELECT `+rowColumns+`
	FROM attendance_records ar
	LEFT JOIN employees e ON e.ec_number = ar.ec_number
	WHERE ar.work_date = ? AND ar.is_late = 1
	ORDER BY ar.check_in_time, ar.ec_number`, workDate)
}

func (s *SQLStore) EmployeeHistory(ctx context.Context, ecNumber string, limit int) ([]Row, error) {
	return s.queryRows(ctx, `
	SELECT `+rowColumns+`
	FROM attendance_records ar
	LEFT JOIN employees e ON e.ec_number = ar.ec_number
	WHERE ar.ec_number = ?
	ORDER BY ar.work_date DESC
	LIMIT ?`, ecNumber, limit)
}

// PendingReview lists records with at least one unverified leg.
func (s *SQLStore) PendingReview(ctx context.Context, workDate string) ([]ReviewRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+rowColumns+`,
	       ar.check_in_outcome, COALESCE(ar.check_out_outcome, ''),
	       ar.check_in_selfie, ar.check_out_selfie
	FROM attendance_records ar
	LEFT JOIN employees e ON e.ec_number = ar.ec_number
	WHERE ar.work_date = ?
	  AND (ar.check_in_verified = 0 OR ar.check_out_verified = 0)
	ORDER BY ar.check_in_time, ar.ec_number`, workDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		var rr ReviewRow
		r, err := scanRow(rows, &rr.CheckInOutcome, &rr.CheckOutOutcome, &rr.CheckInSelfie, &rr.CheckOutSelfie)
		if err != nil {
			return nil, err
		}
		rr.Row = r
		out = append(out, rr)
	}
	return out, rows.Err()
}
