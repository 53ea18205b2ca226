// Package resource provides the resource table behind packed handles.
//
// A Table owns one id space per handle.Type and implements
// handle.Allocator, so it can back handle.Allocate and handle.Free
// directly. It also maps live handles to the Go values they stand for.
//
// # Handle Table
//
//	table := resource.NewTable(resource.WithLimit(handle.Texture, 4096))
//
//	// Mint a handle and bind a value to it
//	h, err := table.Insert(handle.Texture, tex)
//
//	// Retrieve value by handle
//	value, ok := table.Get(h)
//
//	// Type-checked retrieval
//	value, err := table.GetTyped(h, handle.Texture) // ok
//	value, err := table.GetTyped(h, handle.Sampler) // type_mismatch
//
//	// Free the handle and release the value
//	value, err := table.Remove(h)
//
// # Ids
//
// An id combines a slot index and a generation. Id 0 is never minted, so
// the zero handle.Handle never refers to a live resource. Freed slots
// are reused with a new generation; freeing a handle twice, or freeing a
// stale handle whose slot was reused, fails with a double_free error
// instead of releasing someone else's resource.
//
// # Value Ownership
//
// Values implementing rc.System are pinned with an internal reference
// while bound, so they outlive their last external rc.Ptr until the
// handle is freed. Other values are closed (io.Closer) or dropped
// (Dropper) when their handle is freed.
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(event resource.Event) {
//	    switch event.Type {
//	    case resource.EventAllocated:
//	        log.Printf("resource %v allocated", event.Handle)
//	    case resource.EventFreed:
//	        log.Printf("resource %v freed", event.Handle)
//	    }
//	}))
//
// Call table.Close() to free every live handle when the owning device is
// torn down.
package resource
