package attendance

import "time"

const DateLayout = "2006-01-02"

// POST /check-in, /check-out
type PunchRequest struct {
	ECNumber    string `json:"ec_number"`
	ImageBase64 string `json:"image_base64" binding:"required"`
}

type CheckInResponse struct {
	AttendanceID string    `json:"attendance_id"`
	ECNumber     string    `json:"ec_number"`
	Date         string    `json:"date"`
	CheckInTime  time.Time `json:"check_in_time"`
	IsLate       bool      `json:"is_late"`
	Verified     bool      `json:"verified"`
	Outcome      string    `json:"verification"`
	Message      string    `json:"message"`
}

type CheckOutResponse struct {
	AttendanceID string    `json:"attendance_id"`
	ECNumber     string    `json:"ec_number"`
	Date         string    `json:"date"`
	CheckOutTime time.Time `json:"check_out_time"`
	TotalHours   float64   `json:"total_hours"`
	Verified     bool      `json:"verified"`
	Outcome      string    `json:"verification"`
	Message      string    `json:"message"`
}

type RecordResponse struct {
	AttendanceID     string     `json:"attendance_id"`
	ECNumber         string     `json:"ec_number"`
	Date             string     `json:"date"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	IsLate           bool       `json:"is_late"`
	CheckInVerified  bool       `json:"check_in_verified"`
	CheckInOutcome   string     `json:"check_in_verification"`
	CheckOutVerified *bool      `json:"check_out_verified,omitempty"`
	CheckOutOutcome  string     `json:"check_out_verification,omitempty"`
	TotalHours       *float64   `json:"total_hours,omitempty"`
}
