package rc

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/ngfx/errors"
)

// Counted is the external ownership surface of a reference-counted
// object. Ordinary holders only ever see this interface.
type Counted interface {
	// Retain adds an external reference and returns the new count.
	Retain() int32

	// Release drops an external reference and returns the new count.
	// Dropping the last external reference releases the object's own
	// internal reference.
	Release() int32
}

// System is the internal ownership capability. Subsystems that must keep
// an object alive after its last external holder is gone (deferred
// destruction, resource tables) pin it through these methods.
type System interface {
	// RetainInternal adds an internal reference and returns the new count.
	RetainInternal() int32

	// ReleaseInternal drops an internal reference and returns the new
	// count. The object is destroyed when the count reaches zero.
	ReleaseInternal() int32
}

// Object is the dual-count base embedded by reference-counted types.
//
// Both counters start at 1 after Init: the creator owns one external
// reference, and the object holds one implicit internal reference on
// behalf of its external side. The external count reaching zero gives
// up that implicit internal reference. The destroy callback runs exactly
// once, when both counters have reached zero, on the goroutine whose
// decrement completed the pair.
//
// Releasing past zero, or retaining a counter that already reached zero,
// is a contract violation and panics with an *errors.Error.
type Object struct {
	external  atomic.Int32
	internal  atomic.Int32
	destroyed atomic.Bool
	destroy   func()
}

// Init prepares o for use. destroy may be nil.
func (o *Object) Init(destroy func()) {
	o.destroy = destroy
	o.destroyed.Store(false)
	o.external.Store(1)
	o.internal.Store(1)
}

// Retain implements Counted.
func (o *Object) Retain() int32 {
	n := o.external.Add(1)
	if n <= 1 {
		violation(errors.RetainAfterFree("external"))
	}
	return n
}

// Release implements Counted.
func (o *Object) Release() int32 {
	n := o.external.Add(-1)
	switch {
	case n == 0:
		o.releaseImplicit()
	case n < 0:
		violation(errors.Underflow("external", n))
	}
	return n
}

// RetainInternal implements System.
func (o *Object) RetainInternal() int32 {
	n := o.internal.Add(1)
	if n <= 1 {
		violation(errors.RetainAfterFree("internal"))
	}
	return n
}

// ReleaseInternal implements System. Reaching zero while external
// references remain defers destruction to the last external Release.
func (o *Object) ReleaseInternal() int32 {
	n := o.internal.Add(-1)
	switch {
	case n == 0:
		if o.external.Load() == 0 {
			o.finalize()
		}
	case n < 0:
		violation(errors.Underflow("internal", n))
	}
	return n
}

// releaseImplicit drops the internal reference held for the external
// side. If system holders already took the internal count to zero there
// is nothing left to drop and the object dies here.
func (o *Object) releaseImplicit() {
	for {
		n := o.internal.Load()
		if n <= 0 {
			o.finalize()
			return
		}
		if o.internal.CompareAndSwap(n, n-1) {
			if n == 1 {
				o.finalize()
			}
			return
		}
	}
}

func (o *Object) finalize() {
	if !o.destroyed.CompareAndSwap(false, true) {
		return
	}
	if ce := Logger().Check(zap.DebugLevel, "destroying object"); ce != nil {
		ce.Write(zap.Int32("external", o.external.Load()), zap.Int32("internal", o.internal.Load()))
	}
	if o.destroy != nil {
		o.destroy()
	}
}

// RefCounts returns a snapshot of both counters for diagnostics.
// The values may be stale by the time they are read.
func (o *Object) RefCounts() (external, internal int32) {
	return o.external.Load(), o.internal.Load()
}

func violation(err *errors.Error) {
	Logger().Error("reference count contract violation", zap.Error(err))
	panic(err)
}

var (
	_ Counted = (*Object)(nil)
	_ System  = (*Object)(nil)
)
