package reports

import "time"

type RowResponse struct {
	ECNumber         string     `json:"ec_number"`
	Name             string     `json:"name"`
	Date             string     `json:"date"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	TotalHours       *float64   `json:"total_hours,omitempty"`
	IsLate           bool       `json:"is_late"`
	CheckInVerified  bool       `json:"check_in_verified"`
	CheckOutVerified *bool      `json:"check_out_verified,omitempty"`
}

type ReviewResponse struct {
	RowResponse
	CheckInOutcome  string `json:"check_in_outcome"`
	CheckOutOutcome string `json:"check_out_outcome,omitempty"`
	CheckInSelfie   string `json:"check_in_selfie,omitempty"`
	CheckOutSelfie  string `json:"check_out_selfie,omitempty"`
}

type DailyResponse struct {
	Date      string        `json:"date"`
	Present   int           `json:"present"`
	Late      int           `json:"late"`
	Unchecked int           `json:"not_checked_out"`
	Records   []RowResponse `json:"records"`
}

type ListResponse[T any] struct {
	Date    string `json:"date,omitempty"`
	Count   int    `json:"count"`
	Records []T    `json:"records"`
}
