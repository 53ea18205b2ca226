// Package deferred holds objects alive until the GPU is done with them.
//
// Commands recorded against a resource may still be executing after the
// application drops its last rc.Ptr. The submitting code pins the
// resource under the fence value that signals completion:
//
//	q := deferred.New()
//	q.Defer(buf, submitFence)
//	ptr.Reset() // external count may reach zero here; buf stays alive
//
//	// later, from the fence polling loop
//	q.Complete(device.CompletedFence())
//
// Pins are internal references (rc.System), so they never show up in
// the external count that application holders observe.
package deferred
