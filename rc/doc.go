// Package rc provides intrusive dual-count reference counting for
// graphics resources.
//
// # Objects
//
// A type opts in by embedding Object and calling Init with its destroy
// callback:
//
//	type Buffer struct {
//	    rc.Object
//	    mem []byte
//	}
//
//	func NewBuffer(size int) rc.Ptr[*Buffer] {
//	    b := &Buffer{mem: make([]byte, size)}
//	    b.Init(b.free)
//	    return rc.Adopt(b)
//	}
//
// Every Object carries two counters, both 1 after Init:
//
//	external  owned by client code through Ptr (Counted interface)
//	internal  owned by system holders such as deferred destruction queues
//	          (System interface) plus one share held by the external side
//
// When the external count reaches zero the object's own internal share
// is released. The destroy callback runs once, after both counts have
// reached zero, so a system holder can keep an object alive after every
// client has dropped it and the order of the final releases does not
// matter.
//
// # Pointers
//
// Ptr manages one external reference. Go has no copy constructors, so
// sharing is explicit:
//
//	a := NewBuffer(64)
//	b := a.Clone()  // external count 2
//	a.Reset()       // external count 1
//	b.Reset()       // destroyed, unless pinned internally
//
// ResultPtr pairs a Ptr with a status code from the producing API.
//
// # Contract violations
//
// Releasing more references than were retained, retaining an object
// whose count already reached zero, and dereferencing a null Ptr panic
// with an *errors.Error. They indicate bugs, not runtime conditions.
package rc
