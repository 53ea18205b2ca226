package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseAllocate Phase = "allocate" // id minting
	PhaseFree     Phase = "free"     // id release
	PhaseLookup   Phase = "lookup"   // handle to value resolution
	PhaseRetain   Phase = "retain"   // counter increment
	PhaseRelease  Phase = "release"  // counter decrement
	PhaseResult   Phase = "result"   // result-pointer unwrapping
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidType     Kind = "invalid_type"
	KindInvalidID       Kind = "invalid_id"
	KindExhausted       Kind = "exhausted"
	KindDoubleFree      Kind = "double_free"
	KindNotFound        Kind = "not_found"
	KindTypeMismatch    Kind = "type_mismatch"
	KindClosed          Kind = "closed"
	KindUnderflow       Kind = "underflow"
	KindRetainAfterFree Kind = "retain_after_free"
	KindNilPointer      Kind = "nil_pointer"
	KindResult          Kind = "result"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Resource string
	Detail   string
	ID       uint64
	HasID    bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Resource != "" || e.HasID {
		b.WriteString(" at ")
		if e.Resource != "" {
			b.WriteString(e.Resource)
		}
		if e.HasID {
			b.WriteByte('#')
			b.WriteString(strconv.FormatUint(e.ID, 10))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Resource sets the resource type name
func (b *Builder) Resource(name string) *Builder {
	b.err.Resource = name
	return b
}

// ID sets the resource id
func (b *Builder) ID(id uint64) *Builder {
	b.err.ID = id
	b.err.HasID = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Sentinels for errors.Is matching on kind regardless of phase.
var (
	ErrInvalidType     = &Error{Kind: KindInvalidType}
	ErrInvalidID       = &Error{Kind: KindInvalidID}
	ErrExhausted       = &Error{Kind: KindExhausted}
	ErrDoubleFree      = &Error{Kind: KindDoubleFree}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrClosed          = &Error{Kind: KindClosed}
	ErrUnderflow       = &Error{Kind: KindUnderflow}
	ErrRetainAfterFree = &Error{Kind: KindRetainAfterFree}
	ErrNilPointer      = &Error{Kind: KindNilPointer}
	ErrResult          = &Error{Kind: KindResult}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
)

// Convenience constructors for common error patterns

// InvalidType creates an error for a type tag outside the encodable range
func InvalidType(phase Phase, tag, maxValid uint8) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidType,
		Detail: fmt.Sprintf("type tag %d out of range (max %d)", tag, maxValid),
		Value:  tag,
	}
}

// InvalidID creates an error for an id that does not fit the handle layout
func InvalidID(phase Phase, resource string, id uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidID,
		Resource: resource,
		ID:       id,
		HasID:    true,
		Detail:   "id does not fit in 60 bits",
	}
}

// Exhausted creates an id-space exhaustion error
func Exhausted(resource string, limit uint32) *Error {
	return &Error{
		Phase:    PhaseAllocate,
		Kind:     KindExhausted,
		Resource: resource,
		Detail:   fmt.Sprintf("limit of %d live ids reached", limit),
		Value:    limit,
	}
}

// DoubleFree creates an error for a free of an id that is not live
func DoubleFree(resource string, id uint64) *Error {
	return &Error{
		Phase:    PhaseFree,
		Kind:     KindDoubleFree,
		Resource: resource,
		ID:       id,
		HasID:    true,
		Detail:   "id is not live",
	}
}

// NotFound creates a lookup failure error
func NotFound(phase Phase, resource string, id uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotFound,
		Resource: resource,
		ID:       id,
		HasID:    true,
	}
}

// TypeMismatch creates an error for a handle resolved under the wrong type
func TypeMismatch(resource string, id uint64, want string) *Error {
	return &Error{
		Phase:    PhaseLookup,
		Kind:     KindTypeMismatch,
		Resource: resource,
		ID:       id,
		HasID:    true,
		Detail:   fmt.Sprintf("expected %s", want),
	}
}

// Closed creates an error for operations on a closed table
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "resource table closed",
	}
}

// Underflow creates the contract-violation error raised when a counter
// is decremented below zero
func Underflow(counter string, value int32) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindUnderflow,
		Detail: fmt.Sprintf("%s count dropped to %d", counter, value),
		Value:  value,
	}
}

// RetainAfterFree creates the contract-violation error raised when a
// counter that already reached zero is incremented
func RetainAfterFree(counter string) *Error {
	return &Error{
		Phase:  PhaseRetain,
		Kind:   KindRetainAfterFree,
		Detail: fmt.Sprintf("%s count already reached zero", counter),
	}
}

// NilPointer creates a nil dereference error
func NilPointer(goType string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("dereference of null %s", goType),
	}
}

// Result creates an error carrying a non-success operation status
func Result(status any) *Error {
	return &Error{
		Phase:  PhaseResult,
		Kind:   KindResult,
		Detail: fmt.Sprintf("operation returned %v", status),
		Value:  status,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
