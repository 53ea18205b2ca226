package resource

import (
	"github.com/wippyai/ngfx/handle"
)

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventBound
	EventFreed
)

func (e EventType) String() string {
	switch e {
	case EventAllocated:
		return "allocated"
	case EventBound:
		return "bound"
	case EventFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle handle.Handle
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
// Observers are called synchronously, outside the table lock.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface. Functions
// are not comparable, so an ObserverFunc cannot be unsubscribed.
type ObserverFunc func(Event)

// OnResourceEvent implements Observer.
func (f ObserverFunc) OnResourceEvent(e Event) {
	f(e)
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// TypeStats are counters for one resource type.
type TypeStats struct {
	Allocated uint64 // ids minted
	Freed     uint64 // ids released
	Rejected  uint64 // frees of ids that were not live
	Exhausted uint64 // allocations refused by the limit
	Live      uint32
	Peak      uint32
	Limit     uint32
}
