package handle

import (
	"github.com/wippyai/ngfx/errors"
)

// Allocator mints and releases ids per resource type. Implementations
// must be safe for concurrent use and must never mint id 0.
type Allocator interface {
	// Allocate returns a fresh id for t.
	Allocate(t Type) (uint64, error)

	// Free releases an id previously returned by Allocate for t.
	Free(t Type, id uint64) error
}

// Allocate requests a fresh id for t from a and packs it.
// Failures from a are returned unchanged.
func Allocate(a Allocator, t Type) (Handle, error) {
	if !t.Valid() {
		return 0, errors.InvalidType(errors.PhaseAllocate, uint8(t), uint8(TypeMax-1))
	}
	id, err := a.Allocate(t)
	if err != nil {
		return 0, err
	}
	if id > MaxID {
		// the id cannot be handed out, give it back
		_ = a.Free(t, id)
		return 0, errors.InvalidID(errors.PhaseAllocate, t.String(), id)
	}
	return Pack(t, id), nil
}

// Free returns h's id to a. Freeing the same handle twice, or a handle
// that a never produced, is a contract violation; whether it is reported
// depends on a.
func Free(a Allocator, h Handle) error {
	return a.Free(h.Type(), h.ID())
}
