// Package errors provides structured error types for the ngfx module.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the resource type name, the resource id and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFree, errors.KindDoubleFree).
//		Resource("Texture").
//		ID(42).
//		Detail("generation mismatch").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Exhausted("Buffer", 4096)
//	err := errors.DoubleFree("Texture", 42)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match on Kind alone:
//
//	if stderrors.Is(err, errors.ErrExhausted) { ... }
package errors
