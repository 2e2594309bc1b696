package attendance

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"timeflow-backend/internal/face"
	"timeflow-backend/internal/verification"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New(t time.Time) (string, error)
}

type ulidGen struct{}

func (ulidGen) New(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Verifier interface {
	Verify(ctx context.Context, ecNumber string, image []byte) (verification.Decision, error)
}

type Config struct {
	StartTime     string // "15:04:05"
	Location      *time.Location
	MaxImageBytes int
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option { return func(s *Service) { s.id = g } }

// ===== Service本体 =====

// Service is the per-day attendance state machine:
// no record -> checked in -> checked out.
type Service struct {
	store    Store
	verifier Verifier
	clock    Clock
	id       IDGen
	locks    *keyLocker

	loc      *time.Location
	start    wallClock
	maxImage int
}

func NewService(store Store, verifier Verifier, cfg Config, opts ...Option) (*Service, error) {
	st, err := time.Parse("15:04:05", cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time %q: %w", cfg.StartTime, err)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store:    store,
		verifier: verifier,
		clock:    realClock{},
		id:       ulidGen{},
		locks:    newKeyLocker(),
		loc:      loc,
		start:    wallClock{hour: st.Hour(), min: st.Minute(), sec: st.Second()},
		maxImage: cfg.MaxImageBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Today returns the server-side calendar date for now.
func (s *Service) Today() string {
	return s.clock.Now().In(s.loc).Format(DateLayout)
}

// wallClock is a time of day as read off a local clock.
type wallClock struct{ hour, min, sec int }

// IsLate reports whether t is strictly after the configured start time
// on t's own calendar day. The start is a wall-clock time, so it stays
// at e.g. 09:00 on DST transition days.
func (s *Service) IsLate(t time.Time) bool {
	lt := t.In(s.loc)
	y, m, d := lt.Date()
	start := time.Date(y, m, d, s.start.hour, s.start.min, s.start.sec, 0, s.loc)
	return lt.After(start)
}

type CheckInResult struct {
	Record   Record
	Decision verification.Decision
}

type CheckOutResult struct {
	Record   Record
	Decision verification.Decision
}

// CheckIn opens today's record. A failed verification does not block it:
// the record is kept unverified with the capture attached for review.
func (s *Service) CheckIn(ctx context.Context, ecNumber string, image []byte) (CheckInResult, error) {
	if ecNumber == "" {
		return CheckInResult{}, ErrInvalid("ec_number is required")
	}
	if err := face.CheckImage(image, s.maxImage); err != nil {
		return CheckInResult{}, err
	}
	unlock, err := s.locks.lock(ctx, ecNumber)
	if err != nil {
		return CheckInResult{}, err
	}
	defer unlock()

	now := s.clock.Now()
	day := now.In(s.loc).Format(DateLayout)

	switch _, err := s.store.Get(ctx, ecNumber, day); {
	case err == nil:
		return CheckInResult{}, ErrAlreadyCheckedIn
	case !errors.Is(err, ErrRecordNotFound):
		return CheckInResult{}, err
	}

	dec, err := s.verifier.Verify(ctx, ecNumber, image)
	if err != nil {
		return CheckInResult{}, err
	}
	id, err := s.id.New(now)
	if err != nil {
		return CheckInResult{}, err
	}

	rec := Record{
		AttendanceULID: id,
		ECNumber:       ecNumber,
		WorkDate:       day,
		CheckInTime:    now.UTC(),
		IsLate:         s.IsLate(now),
		CheckIn:        legFor(dec),
	}
	if err := s.store.Insert(ctx, &rec); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			return CheckInResult{}, ErrAlreadyCheckedIn
		}
		return CheckInResult{}, err
	}
	if !dec.Verified() {
		log.Printf("[WARN] check-in for %s recorded unverified (%s), queued for review", ecNumber, dec.Outcome)
	}
	return CheckInResult{Record: rec, Decision: dec}, nil
}

// CheckOut closes today's record with its own verification leg.
func (s *Service) CheckOut(ctx context.Context, ecNumber string, image []byte) (CheckOutResult, error) {
	if ecNumber == "" {
		return CheckOutResult{}, ErrInvalid("ec_number is required")
	}
	if err := face.CheckImage(image, s.maxImage); err != nil {
		return CheckOutResult{}, err
	}
	unlock, err := s.locks.lock(ctx, ecNumber)
	if err != nil {
		return CheckOutResult{}, err
	}
	defer unlock()

	now := s.clock.Now()
	day := now.In(s.loc).Format(DateLayout)

	cur, err := s.store.Get(ctx, ecNumber, day)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return CheckOutResult{}, ErrNoCheckInFound
		}
		return CheckOutResult{}, err
	}
	if cur.CheckedOut() {
		return CheckOutResult{}, ErrAlreadyCheckedOut
	}

	dec, err := s.verifier.Verify(ctx, ecNumber, image)
	if err != nil {
		return CheckOutResult{}, err
	}

	out := now.UTC()
	if out.Before(cur.CheckInTime) {
		out = cur.CheckInTime
	}
	rec, err := s.store.CompleteCheckOut(ctx, ecNumber, day, out, WorkedHours(cur.CheckInTime, out), legFor(dec))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return CheckOutResult{}, ErrNoCheckInFound
		}
		return CheckOutResult{}, err
	}
	if !dec.Verified() {
		log.Printf("[WARN] check-out for %s recorded unverified (%s), queued for review", ecNumber, dec.Outcome)
	}
	return CheckOutResult{Record: rec, Decision: dec}, nil
}

// Record returns ecNumber's record for today.
func (s *Service) Record(ctx context.Context, ecNumber string) (Record, error) {
	if ecNumber == "" {
		return Record{}, ErrInvalid("ec_number is required")
	}
	return s.store.Get(ctx, ecNumber, s.Today())
}

func legFor(dec verification.Decision) Leg {
	if dec.Verified() {
		return Leg{Verified: true, Outcome: dec.Outcome.String()}
	}
	return Leg{Verified: false, Outcome: dec.Outcome.String(), Selfie: dec.Image}
}
