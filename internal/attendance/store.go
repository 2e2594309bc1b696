package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timeflow-backend/internal/platform/db"
)

var (
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrDuplicateRecord = errors.New("attendance record already exists")
	ErrUnknownEmployee = errors.New("unknown employee")
)

// Store is the persistence boundary of the engine.
//
// Insert must fail with ErrDuplicateRecord when (ec_number, work_date)
// already exists. CompleteCheckOut only succeeds on a record without a
// check-out and returns ErrAlreadyCheckedOut otherwise.
type Store interface {
	Get(ctx context.Context, ecNumber, workDate string) (Record, error)
	Insert(ctx context.Context, r *Record) error
	CompleteCheckOut(ctx context.Context, ecNumber, workDate string, at time.Time, hours float64, leg Leg) (Record, error)
}

type SQLStore struct{ db *sql.DB }

func NewStore(conn *sql.DB) *SQLStore { return &SQLStore{db: conn} }

const selectRecord = `
	SELECT attendance_id, attendance_ulid, ec_number, DATE_FORMAT(work_date, '%Y-%m-%d') AS work_date,
	       check_in_time, check_out_time, is_late,
	       check_in_verified, check_in_outcome, check_in_selfie,
	       check_out_verified, check_out_outcome, check_out_selfie, total_hours
	FROM attendance_records`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var r recordRow
	err := row.Scan(&r.AttendanceID, &r.AttendanceULID, &r.ECNumber, &r.WorkDate,
		&r.CheckInTime, &r.CheckOutTime, &r.IsLate,
		&r.CheckInVerified, &r.CheckInOutcome, &r.CheckInSelfie,
		&r.CheckOutVerified, &r.CheckOutOutcome, &r.CheckOutSelfie, &r.TotalHours)
	if err != nil {
		return Record{}, err
	}
	return r.toModel(), nil
}

func getRecord(ctx context.Context, q db.DBTX, ecNumber, workDate string, lock bool) (Record, error) {
	query := selectRecord + ` WHERE ec_number = ? AND work_date = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	rec, err := scanRecord(q.QueryRowContext(ctx, query, ecNumber, workDate))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *SQLStore) Get(ctx context.Context, ecNumber, workDate string) (Record, error) {
	return getRecord(ctx, s.db, ecNumber, workDate, false)
}

// Insert: (ec_number, work_date) の UNIQUE 制約で二重打刻を防ぐ
func (s *SQLStore) Insert(ctx context.Context, r *Record) error {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO attendance_records
	  (attendance_ulid, ec_number, work_date, check_in_time, is_late,
	   check_in_verified, check_in_outcome, check_in_selfie)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AttendanceULID, r.ECNumber, r.WorkDate, r.CheckInTime.UTC(), r.IsLate,
		r.CheckIn.Verified, r.CheckIn.Outcome, nilIfEmpty(r.CheckIn.Selfie),
	)
	if err != nil {
		switch {
		case db.IsDuplicateKey(err):
			return ErrDuplicateRecord
		case db.IsForeignKeyViolation(err):
			return ErrUnknownEmployee
		}
		return err
	}
	id, err := res.LastInsertId()
	if err == nil {
		r.AttendanceID = uint64(id)
	}
	return nil
}

// CompleteCheckOut locks the day's row, refuses a second check-out and
// writes the check-out leg in one transaction.
func (s *SQLStore) CompleteCheckOut(ctx context.Context, ecNumber, workDate string, at time.Time, hours float64, leg Leg) (Record, error) {
	var out Record
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		cur, err := getRecord(ctx, tx, ecNumber, workDate, true)
		if err != nil {
			return err
		}
		if cur.CheckedOut() {
			return ErrAlreadyCheckedOut
		}
		_, err = tx.ExecContext(ctx, `
		UPDATE attendance_records
		SET check_out_time = ?, total_hours = ?,
		    check_out_verified = ?, check_out_outcome = ?, check_out_selfie = ?
		WHERE ec_number = ? AND work_date = ? AND check_out_time IS NULL`,
			at.UTC(), hours, leg.Verified, leg.Outcome, nilIfEmpty(leg.Selfie),
			ecNumber, workDate,
		)
		if err != nil {
			return err
		}
		out, err = getRecord(ctx, tx, ecNumber, workDate, false)
		return err
	})
	return out, err
}

func nilIfEmpty(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
