// Package verification decides whether a live capture belongs to the
// employee it claims to be.
package verification

import (
	"context"
	"errors"
	"log"
	"time"

	"timeflow-backend/internal/face"
)

// DescriptorSource yields an employee's enrolled descriptor.
type DescriptorSource interface {
	Descriptor(ctx context.Context, ecNumber string) (face.Descriptor, bool, error)
}

type Orchestrator struct {
	descriptors DescriptorSource
	extractor   face.Extractor
	matcher     face.Matcher
	timeout     time.Duration
}

func NewOrchestrator(src DescriptorSource, ex face.Extractor, m face.Matcher, timeout time.Duration) *Orchestrator {
	return &Orchestrator{descriptors: src, extractor: ex, matcher: m, timeout: timeout}
}

// Verify classifies image against ecNumber's enrolled descriptor. Every
// outcome is a value; the returned error is only set when the descriptor
// store itself failed, or ctx was canceled by the caller.
func (o *Orchestrator) Verify(ctx context.Context, ecNumber string, image []byte) (Decision, error) {
	enrolled, ok, err := o.descriptors.Descriptor(ctx, ecNumber)
	switch {
	case errors.Is(err, face.ErrDecode):
		// an unreadable reference can never match
		log.Printf("[WARN] stored descriptor unusable for %s: %v", ecNumber, err)
		return Decision{Outcome: NotMatched, Image: image, Detail: "stored descriptor unusable"}, nil
	case err != nil:
		return Decision{}, err
	case !ok:
		return Decision{Outcome: NotEnrolled, Image: image}, nil
	}

	xctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		xctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	live, _, err := o.extractor.Extract(xctx, image)
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = "extraction timed out"
		}
		return Decision{Outcome: ExtractionFailed, Image: image, Detail: detail}, nil
	}

	dist, match, err := o.matcher.Compare(live, enrolled)
	if err != nil {
		log.Printf("[WARN] descriptor comparison failed for %s: %v", ecNumber, err)
		return Decision{Outcome: NotMatched, Image: image, Detail: err.Error()}, nil
	}
	if !match {
		return Decision{Outcome: NotMatched, Distance: dist, Image: image}, nil
	}
	return Decision{Outcome: Matched, Distance: dist}, nil
}
