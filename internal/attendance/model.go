package attendance

import (
	"database/sql"
	"math"
	"time"
)

// DB行に対応（スキャン用）
type recordRow struct {
	AttendanceID     uint64
	AttendanceULID   string
	ECNumber         string
	WorkDate         string // DATE → "YYYY-MM-DD"
	CheckInTime      time.Time
	CheckOutTime     sql.NullTime
	IsLate           bool
	CheckInVerified  bool
	CheckInOutcome   string
	CheckInSelfie    []byte
	CheckOutVerified sql.NullBool
	CheckOutOutcome  sql.NullString
	CheckOutSelfie   []byte
	TotalHours       sql.NullFloat64
}

// Leg is the verification result of one side of the day.
type Leg struct {
	Verified bool
	Outcome  string
	Selfie   []byte // only when not verified
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	AttendanceID   uint64
	AttendanceULID string
	ECNumber       string
	WorkDate       string
	CheckInTime    time.Time
	CheckOutTime   *time.Time
	IsLate         bool
	CheckIn        Leg
	CheckOut       *Leg
	TotalHours     *float64
}

func (r *Record) CheckedOut() bool { return r.CheckOutTime != nil }

func (r recordRow) toModel() Record {
	rec := Record{
		AttendanceID:   r.AttendanceID,
		AttendanceULID: r.AttendanceULID,
		ECNumber:       r.ECNumber,
		WorkDate:       r.WorkDate,
		CheckInTime:    r.CheckInTime.UTC(),
		IsLate:         r.IsLate,
		CheckIn: Leg{
			Verified: r.CheckInVerified,
			Outcome:  r.CheckInOutcome,
			Selfie:   r.CheckInSelfie,
		},
	}
	if r.CheckOutTime.Valid {
		t := r.CheckOutTime.Time.UTC()
		rec.CheckOutTime = &t
		rec.CheckOut = &Leg{
			Verified: r.CheckOutVerified.Bool,
			Outcome:  r.CheckOutOutcome.String,
			Selfie:   r.CheckOutSelfie,
		}
	}
	if r.TotalHours.Valid {
		h := r.TotalHours.Float64
		rec.TotalHours = &h
	}
	return rec
}

// WorkedHours is out-in in hours, never negative.
func WorkedHours(in, out time.Time) float64 {
	if !out.After(in) {
		return 0
	}
	return out.Sub(in).Hours()
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func (r Record) toDTO() RecordResponse {
	out := RecordResponse{
		AttendanceID:    r.AttendanceULID,
		ECNumber:        r.ECNumber,
		Date:            r.WorkDate,
		CheckInTime:     r.CheckInTime,
		CheckOutTime:    r.CheckOutTime,
		IsLate:          r.IsLate,
		CheckInVerified: r.CheckIn.Verified,
		CheckInOutcome:  r.CheckIn.Outcome,
	}
	if r.CheckOut != nil {
		v := r.CheckOut.Verified
		out.CheckOutVerified = &v
		out.CheckOutOutcome = r.CheckOut.Outcome
	}
	if r.TotalHours != nil {
		h := roundHours(*r.TotalHours)
		out.TotalHours = &h
	}
	return out
}
