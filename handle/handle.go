package handle

import (
	"strconv"

	"github.com/wippyai/ngfx/errors"
)

const (
	typeBits = 4
	typeMask = 1<<typeBits - 1

	// MaxID is the largest id a handle can carry.
	MaxID uint64 = 1<<(64-typeBits) - 1
)

// Handle is a packed resource reference: the type tag in bits 0..3 and
// the id in bits 4..63. The zero Handle is the unset state.
//
// Handles compare with ==; two handles are equal iff type and id match.
type Handle uint64

// Pack composes t and id into a Handle. The id is truncated to 60 bits
// and the tag to 4 bits; use New to validate instead.
func Pack(t Type, id uint64) Handle {
	return Handle(id<<typeBits | uint64(t)&typeMask)
}

// New packs t and id after checking both fit the layout.
func New(t Type, id uint64) (Handle, error) {
	if !t.Valid() {
		return 0, errors.InvalidType(errors.PhaseAllocate, uint8(t), uint8(TypeMax-1))
	}
	if id > MaxID {
		return 0, errors.InvalidID(errors.PhaseAllocate, t.String(), id)
	}
	return Pack(t, id), nil
}

// FromValue reinterprets a raw 64-bit word as a Handle.
func FromValue(v uint64) Handle {
	return Handle(v)
}

// Type returns the resource tag.
func (h Handle) Type() Type {
	return Type(uint64(h) & typeMask)
}

// ID returns the 60-bit identifier.
func (h Handle) ID() uint64 {
	return uint64(h) >> typeBits
}

// Value returns the packed 64-bit word.
func (h Handle) Value() uint64 {
	return uint64(h)
}

// IsZero reports whether h is the unset handle.
func (h Handle) IsZero() bool {
	return h == 0
}

func (h Handle) String() string {
	return h.Type().String() + "#" + strconv.FormatUint(h.ID(), 10)
}
