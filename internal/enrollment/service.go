// Package enrollment derives and stores an employee's reference face
// descriptor.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"timeflow-backend/internal/face"
)

var (
	ErrNoFaceDetected   = errors.New("no face detected")
	ErrFaceTooSmall     = errors.New("face too small")
	ErrImageTooLarge    = face.ErrImageTooLarge
	ErrInvalidImage     = face.ErrInvalidImage
	ErrBadDescriptor    = errors.New("extracted descriptor has wrong dimension")
	ErrExtractionFailed = errors.New("face extraction failed")
)

type Config struct {
	MaxImageBytes  int
	MinFaceSize    int
	ExtractTimeout time.Duration
}

type Result struct {
	ECNumber string
	Box      face.BoundingBox
}

type Manager struct {
	repo      *Repository
	extractor face.Extractor
	cfg       Config
}

func NewManager(repo *Repository, extractor face.Extractor, cfg Config) *Manager {
	return &Manager{repo: repo, extractor: extractor, cfg: cfg}
}

// Enroll extracts a descriptor from image and stores it for ecNumber,
// replacing any earlier one. On any failure the stored descriptor is
// left as it was.
func (m *Manager) Enroll(ctx context.Context, ecNumber string, image []byte) (Result, error) {
	if ecNumber == "" {
		return Result{}, ErrEmployeeNotFound
	}
	if err := face.CheckImage(image, m.cfg.MaxImageBytes); err != nil {
		return Result{}, err
	}

	xctx := ctx
	if m.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		xctx, cancel = context.WithTimeout(ctx, m.cfg.ExtractTimeout)
		defer cancel()
	}
	d, box, err := m.extractor.Extract(xctx, image)
	if err != nil {
		if errors.Is(err, face.ErrNoFace) {
			return Result{}, ErrNoFaceDetected
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if minSize := m.cfg.MinFaceSize; minSize > 0 && (box.Width < minSize || box.Height < minSize) {
		return Result{}, fmt.Errorf("%w: %dx%d, need %dx%d", ErrFaceTooSmall, box.Width, box.Height, minSize, minSize)
	}

	if err := m.repo.Save(ctx, ecNumber, d); err != nil {
		if errors.Is(err, face.ErrDimensionMismatch) {
			return Result{}, fmt.Errorf("%w: %v", ErrBadDescriptor, err)
		}
		return Result{}, err
	}
	log.Printf("[INFO] enrolled face for %s (%dx%d)", ecNumber, box.Width, box.Height)
	return Result{ECNumber: ecNumber, Box: box}, nil
}

// Reason maps an Enroll error to a stable code for API responses.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFaceDetected):
		return "NO_FACE_DETECTED"
	case errors.Is(err, ErrFaceTooSmall):
		return "FACE_TOO_SMALL"
	case errors.Is(err, ErrImageTooLarge):
		return "IMAGE_TOO_LARGE"
	case errors.Is(err, ErrInvalidImage):
		return "INVALID_IMAGE"
	case errors.Is(err, ErrBadDescriptor):
		return "BAD_DESCRIPTOR"
	case errors.Is(err, ErrEmployeeNotFound):
		return "EMPLOYEE_NOT_FOUND"
	case errors.Is(err, ErrExtractionFailed):
		return "EXTRACTION_FAILED"
	default:
		return "INTERNAL"
	}
}
