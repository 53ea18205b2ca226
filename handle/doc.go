// Package handle provides packed 64-bit references to GPU-side resources.
//
// A Handle carries a 4-bit resource Type and a 60-bit id in one word, so
// subsystems can pass buffers, textures, pipelines and the like around
// by value instead of by live pointer:
//
//	bits  0..3   type tag (Buffer, Texture, ... RTAccelerationStructure)
//	bits  4..63  id
//
// Ids come from an Allocator, the resource table that owns the id space:
//
//	h, err := handle.Allocate(table, handle.Texture)
//	if err != nil {
//	    return err
//	}
//	defer handle.Free(table, h)
//
// The zero Handle is the unset state. Allocators never mint id 0, so it
// cannot collide with a live Buffer.
package handle
