package rc

import (
	"fmt"

	"github.com/wippyai/ngfx/errors"
)

// Ref is the constraint for types managed by Ptr: comparable so the
// zero value can act as null, and Counted for external ownership.
type Ref interface {
	comparable
	Counted
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Ptr owns one external reference to a T, or nothing.
//
// A Ptr must not be copied by value: use Clone to share the object and
// Reset to give up the reference. go vet reports accidental copies.
// A single Ptr is not safe for concurrent mutation; only the counters of
// the referenced object are atomic.
type Ptr[T Ref] struct {
	obj T
	_   noCopy
}

// Adopt wraps obj, which must already carry one external reference for
// the new Ptr. No retain is performed.
func Adopt[T Ref](obj T) Ptr[T] {
	return Ptr[T]{obj: obj}
}

// Clone returns a new Ptr sharing p's object, retaining it once.
func (p *Ptr[T]) Clone() Ptr[T] {
	var zero T
	if p.obj != zero {
		p.obj.Retain()
	}
	return Ptr[T]{obj: p.obj}
}

// Assign makes p share src's object. The new reference is acquired
// before the old one is released, so assigning a pointer to itself or
// to another Ptr of the same object leaves the count unchanged.
func (p *Ptr[T]) Assign(src *Ptr[T]) {
	if p == src {
		return
	}
	tmp := src.Clone()
	p.Swap(&tmp)
	tmp.Reset()
}

// Reset releases the held reference, if any, and leaves p null.
func (p *Ptr[T]) Reset() {
	var zero T
	if p.obj == zero {
		return
	}
	obj := p.obj
	p.obj = zero
	obj.Release()
}

// Attach hands p an externally produced reference that already carries
// one external retain, releasing whatever p held before.
func (p *Ptr[T]) Attach(obj T) {
	var zero T
	old := p.obj
	p.obj = obj
	if old != zero {
		old.Release()
	}
}

// Detach gives up ownership of the held reference without releasing it.
// The caller becomes responsible for the external retain.
func (p *Ptr[T]) Detach() T {
	var zero T
	obj := p.obj
	p.obj = zero
	return obj
}

// Swap exchanges the references held by p and other.
func (p *Ptr[T]) Swap(other *Ptr[T]) {
	p.obj, other.obj = other.obj, p.obj
}

// Get dereferences p. It panics if p is null.
func (p *Ptr[T]) Get() T {
	var zero T
	if p.obj == zero {
		panic(errors.NilPointer(typeName(zero)))
	}
	return p.obj
}

// Raw returns the held reference, or the zero T if p is null.
// The reference is borrowed; p still owns it.
func (p *Ptr[T]) Raw() T {
	return p.obj
}

// Valid reports whether p holds a reference.
func (p *Ptr[T]) Valid() bool {
	var zero T
	return p.obj != zero
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
