// Package reports serves read-only attendance views for administrators.
package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"timeflow-backend/internal/face"
)

const (
	DateLayout          = "2006-01-02"
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 366
)

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Calendar supplies the server-side "today" used when no date is given.
type Calendar interface {
	Today() string
}

type Service struct {
	store Store
	cal   Calendar
}

func NewService(store Store, cal Calendar) *Service {
	return &Service{store: store, cal: cal}
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.cal.Today(), nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}

func (s *Service) Daily(ctx context.Context, date string) (DailyResponse, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return DailyResponse{}, err
	}
	rows, err := s.store.Daily(ctx, day)
	if err != nil {
		return DailyResponse{}, err
	}
	res := DailyResponse{Date: day, Present: len(rows), Records: make([]RowResponse, 0, len(rows))}
	for _, r := range rows {
		if r.IsLate {
			res.Late++
		}
		if r.CheckOutTime == nil {
			res.Unchecked++
		}
		res.Records = append(res.Records, r.toDTO())
	}
	return res, nil
}

func (s *Service) Lateness(ctx context.Context, date string) (ListResponse[RowResponse], error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return ListResponse[RowResponse]{}, err
	}
	rows, err := s.store.Lateness(ctx, day)
	if err != nil {
		return ListResponse[RowResponse]{}, err
	}
	return ListResponse[RowResponse]{Date: day, Count: len(rows), Records: toDTOs(rows)}, nil
}

// PendingReview returns the records whose check-in or check-out was not
// verified, with the stored selfies for manual review.
func (s *Service) PendingReview(ctx context.Context, date string) (ListResponse[ReviewResponse], error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return ListResponse[ReviewResponse]{}, err
	}
	rows, err := s.store.PendingReview(ctx, day)
	if err != nil {
		return ListResponse[ReviewResponse]{}, err
	}
	out := make([]ReviewResponse, 0, len(rows))
	for _, r := range rows {
		rr := ReviewResponse{
			RowResponse:     r.Row.toDTO(),
			CheckInOutcome:  r.CheckInOutcome,
			CheckOutOutcome: r.CheckOutOutcome,
		}
		if len(r.CheckInSelfie) > 0 {
			rr.CheckInSelfie = face.EncodeBase64Image(r.CheckInSelfie)
		}
		if len(r.CheckOutSelfie) > 0 {
			rr.CheckOutSelfie = face.EncodeBase64Image(r.CheckOutSelfie)
		}
		out = append(out, rr)
	}
	return ListResponse[ReviewResponse]{Date: day, Count: len(out), Records: out}, nil
}

// EmployeeHistory returns the newest limit records for one employee.
// limit <= 0 means DefaultHistoryLimit.
func (s *Service) EmployeeHistory(ctx context.Context, ecNumber string, limit int) (ListResponse[RowResponse], error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)
	rows, err := s.store.EmployeeHistory(ctx, ecNumber, limit)
	if err != nil {
		return ListResponse[RowResponse]{}, err
	}
	return ListResponse[RowResponse]{Count: len(rows), Records: toDTOs(rows)}, nil
}

func toDTOs(rows []Row) []RowResponse {
	out := make([]RowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO())
	}
	return out
}

func (r Row) toDTO() RowResponse {
	dto := RowResponse{
		ECNumber:         r.ECNumber,
		Name:             r.Name,
		Date:             r.WorkDate,
		CheckInTime:      r.CheckInTime,
		CheckOutTime:     r.CheckOutTime,
		IsLate:           r.IsLate,
		CheckInVerified:  r.CheckInVerified,
		CheckOutVerified: r.CheckOutVerified,
	}
	if r.TotalHours != nil {
		h := math.Round(*r.TotalHours*100) / 100
		dto.TotalHours = &h
	}
	return dto
}
