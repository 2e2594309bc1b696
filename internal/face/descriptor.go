// Package face turns captured images into identity descriptors and
// compares them.
//
// The face model itself runs out of process. This package owns the
// descriptor representation, its storage encoding, the distance metric
// and the client that talks to the model service.
package face

import (
	"errors"
	"math"
)

// Descriptor is the fixed-length feature vector produced by the face
// model for one face. Treat it as immutable once produced.
type Descriptor []float32

// BoundingBox is the detected face region in image pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

var (
	ErrDimensionMismatch = errors.New("descriptor dimension mismatch")
	ErrDecode            = errors.New("malformed stored descriptor")
)

// Clone returns a copy that does not share backing storage with d.
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// Valid reports whether d has the expected dimension and only finite values.
func (d Descriptor) Valid(dim int) bool {
	if len(d) == 0 || len(d) != dim {
		return false
	}
	for _, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
