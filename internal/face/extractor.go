package face

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoFace means the model ran and found no face in the image.
	ErrNoFace = errors.New("no face detected")
	// ErrModelUnavailable means the model could not be reached or loaded.
	ErrModelUnavailable = errors.New("face model unavailable")
)

// Extractor turns one image into a descriptor and the face's bounding box.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Descriptor, BoundingBox, error)
}

// Model is an Extractor that needs its weights loaded before first use.
type Model interface {
	Extractor
	Load(ctx context.Context) error
}

const loadTimeout = 30 * time.Second

// Runtime is the process-wide handle on the face model. Loading happens
// once; concurrent first callers share a single load and a failed load
// is retried by the next caller.
type Runtime struct {
	model Model
	group singleflight.Group
	ready atomic.Bool
}

func NewRuntime(m Model) *Runtime {
	return &Runtime{model: m}
}

func (r *Runtime) Ready() bool { return r.ready.Load() }

// Load warms the model. The shared load is not bound to any one caller's
// cancellation; ctx only limits how long this caller waits.
func (r *Runtime) Load(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}
	ch := r.group.DoChan("load", func() (any, error) {
		if r.ready.Load() {
			return nil, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		if err := r.model.Load(lctx); err != nil {
			return nil, err
		}
		r.ready.Store(true)
		return nil, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("%w: %v", ErrModelUnavailable, res.Err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runtime) Extract(ctx context.Context, image []byte) (Descriptor, BoundingBox, error) {
	if err := r.Load(ctx); err != nil {
		return nil, BoundingBox{}, err
	}
	return r.model.Extract(ctx, image)
}
