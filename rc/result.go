package rc

import (
	"strconv"

	"github.com/wippyai/ngfx/errors"
)

// Result is the default status code paired with a ResultPtr.
type Result int32

const (
	ResultOK Result = iota
	ResultFailed
	ResultOutOfMemory
	ResultInvalidArgument
	ResultNotReady
	ResultDeviceLost
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFailed:
		return "failed"
	case ResultOutOfMemory:
		return "out of memory"
	case ResultInvalidArgument:
		return "invalid argument"
	case ResultNotReady:
		return "not ready"
	case ResultDeviceLost:
		return "device lost"
	default:
		return "Result(" + strconv.Itoa(int(r)) + ")"
	}
}

// ResultPtr pairs a Ptr with the status reported by the API that
// produced it. The zero value of R means success. Status and pointer are
// independent: a producer may return a failure with an object or
// success without one, and callers must check OK before dereferencing.
type ResultPtr[T Ref, R comparable] struct {
	Ptr[T]
	Result R
}

// NewResult returns a null ResultPtr carrying status.
func NewResult[T Ref, R comparable](status R) ResultPtr[T, R] {
	return ResultPtr[T, R]{Result: status}
}

// AdoptResult wraps obj, which must already carry one external
// reference, together with status.
func AdoptResult[T Ref, R comparable](obj T, status R) ResultPtr[T, R] {
	return ResultPtr[T, R]{Ptr: Ptr[T]{obj: obj}, Result: status}
}

// OK reports whether the status is the success value.
func (r *ResultPtr[T, R]) OK() bool {
	var zero R
	return r.Result == zero
}

// Take moves the pointer out when the status is success and an object
// is held. Otherwise it returns an error and leaves r untouched.
func (r *ResultPtr[T, R]) Take() (Ptr[T], error) {
	if !r.OK() {
		return Ptr[T]{}, errors.Result(r.Result)
	}
	if !r.Valid() {
		var zero T
		return Ptr[T]{}, errors.NilPointer(typeName(zero))
	}
	return Ptr[T]{obj: r.Detach()}, nil
}
