// Package ngfx provides the object lifetime layer of a graphics
// abstraction: intrusive reference counting and packed resource handles.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	ngfx/
//	├── rc/              Dual-count objects, Ptr and ResultPtr
//	├── handle/          64-bit packed handles and the Allocator contract
//	├── resource/        Resource table minting ids and mapping handles to values
//	├── deferred/        Fence-keyed queue keeping objects alive for the GPU
//	├── config/          YAML settings for stress runs
//	├── errors/          Structured error types for debugging
//	└── cmd/ngfxstress/  Concurrent stress run with an optional terminal UI
//
// # Quick Start
//
// Define a reference-counted resource and hold it through a Ptr:
//
//	type Texture struct {
//	    rc.Object
//	    pixels []byte
//	}
//
//	tex := &Texture{pixels: make([]byte, 4*w*h)}
//	tex.Init(nil)
//	p := rc.Adopt(tex)
//	defer p.Reset()
//
// Give it a handle that can cross API boundaries:
//
//	table := resource.NewTable()
//	h, err := table.Insert(handle.Texture, tex)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(h.Type(), h.ID()) // Texture 1
//
// Keep it alive until the GPU signals a fence:
//
//	q := deferred.New()
//	q.Defer(tex, fence)
//
// # Ownership Model
//
// Every object carries an external count, owned by application holders
// through rc.Ptr, and an internal count, owned by subsystems through the
// rc.System capability. The object is destroyed exactly once, after both
// counts reach zero. See package rc for details.
//
// # Error Handling
//
// Errors are structured with phase and kind:
//
//	var e *errors.Error
//	if stderrors.As(err, &e) {
//	    fmt.Println(e.Phase)    // "allocate"
//	    fmt.Println(e.Kind)     // "exhausted"
//	    fmt.Println(e.Resource) // "Texture"
//	}
//
// Contract violations such as releasing past zero panic with an
// *errors.Error instead of returning one.
//
// # Logging
//
// Packages log through zap. rc uses a package logger set with
// rc.SetLogger; resource.Table and deferred.Queue take a WithLogger
// option. All default to a no-op logger.
package ngfx
