package enrollment

import (
	"context"
	"errors"
	"fmt"

	"timeflow-backend/internal/face"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// DescriptorStore persists encoded descriptors keyed by employee.
// GetDescriptor reports ok=false when the employee has none on file.
// PutDescriptor overwrites and returns ErrEmployeeNotFound for unknown ids.
type DescriptorStore interface {
	GetDescriptor(ctx context.Context, ecNumber string) (encoded []byte, ok bool, err error)
	PutDescriptor(ctx context.Context, ecNumber string, encoded []byte) error
}

// Repository is the typed view over a DescriptorStore.
type Repository struct {
	store DescriptorStore
	codec *face.Codec
}

func NewRepository(store DescriptorStore, codec *face.Codec) *Repository {
	return &Repository{store: store, codec: codec}
}

// Descriptor returns the enrolled descriptor. A stored value that does
// not decode at the configured dimension is returned as a face.ErrDecode
// error so callers can fail closed.
func (r *Repository) Descriptor(ctx context.Context, ecNumber string) (face.Descriptor, bool, error) {
	raw, ok, err := r.store.GetDescriptor(ctx, ecNumber)
	if err != nil || !ok {
		return nil, ok, err
	}
	d, err := r.codec.Decode(raw)
	if err != nil {
		return nil, true, fmt.Errorf("employee %s: %w", ecNumber, err)
	}
	return d, true, nil
}

func (r *Repository) Save(ctx context.Context, ecNumber string, d face.Descriptor) error {
	raw, err := r.codec.Encode(d)
	if err != nil {
		return err
	}
	return r.store.PutDescriptor(ctx, ecNumber, raw)
}
