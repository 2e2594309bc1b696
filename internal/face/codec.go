package face

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// storedDescriptor is the persisted shape. The version byte leaves room
// for a different layout without guessing from the payload.
type storedDescriptor struct {
	Version uint8     `cbor:"1,keyasint"`
	Values  []float32 `cbor:"2,keyasint"`
}

const storedVersion = 1

// Codec converts descriptors to and from their storage bytes.
// Encoding is CBOR with core deterministic options, so the same
// descriptor always produces the same bytes.
type Codec struct {
	dim int
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCodec(dim int) (*Codec, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("codec dimension must be positive, got %d", dim)
	}
	opts := cbor.CoreDetEncOptions()
	// keep float32 as float32; shortest-form would still round-trip
	// but makes stored bytes depend on the values
	opts.ShortestFloat = cbor.ShortestFloatNone
	enc, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	// the decoder refuses limits below 16
	dec, err := cbor.DecOptions{
		MaxArrayElements: max(dim, 16),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &Codec{dim: dim, enc: enc, dec: dec}, nil
}

func (c *Codec) Dimension() int { return c.dim }

func (c *Codec) Encode(d Descriptor) ([]byte, error) {
	if !d.Valid(c.dim) {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(d), c.dim)
	}
	return c.enc.Marshal(storedDescriptor{Version: storedVersion, Values: d})
}

func (c *Codec) Decode(b []byte) (Descriptor, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrDecode)
	}
	var s storedDescriptor
	if err := c.dec.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if s.Version != storedVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecode, s.Version)
	}
	d := Descriptor(s.Values)
	if !d.Valid(c.dim) {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrDecode, len(d), c.dim)
	}
	return d, nil
}
