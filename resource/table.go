package resource

import (
	"io"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/ngfx/errors"
	"github.com/wippyai/ngfx/handle"
	"github.com/wippyai/ngfx/rc"
)

// Table owns the id space of every resource type and maps live handles
// to the values they stand for. It implements handle.Allocator.
type Table struct {
	log       *zap.Logger
	observers []Observer
	spaces    [handle.TypeMax]space
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// Option configures a Table.
type Option func(*Table)

// WithLimit caps the number of live ids of type t.
func WithLimit(t handle.Type, n uint32) Option {
	return func(tb *Table) {
		if t.Valid() {
			tb.spaces[t].stats.Limit = n
		}
	}
}

// WithLimits applies WithLimit for every entry of limits.
func WithLimits(limits map[handle.Type]uint32) Option {
	return func(tb *Table) {
		for t, n := range limits {
			WithLimit(t, n)(tb)
		}
	}
}

// WithLogger sets the logger used for rejected frees and close errors.
func WithLogger(l *zap.Logger) Option {
	return func(tb *Table) {
		tb.log = l
	}
}

// NewTable creates an empty table with DefaultLimit ids per type.
func NewTable(opts ...Option) *Table {
	t := &Table{log: zap.NewNop()}
	for i := range t.spaces {
		t.spaces[i] = newSpace(DefaultLimit)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ handle.Allocator = (*Table)(nil)

// Allocate implements handle.Allocator.
func (t *Table) Allocate(typ handle.Type) (uint64, error) {
	if !typ.Valid() {
		return 0, errors.InvalidType(errors.PhaseAllocate, uint8(typ), uint8(handle.TypeMax-1))
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, errors.Closed(errors.PhaseAllocate)
	}
	sp := &t.spaces[typ]
	id, ok := sp.alloc()
	limit := sp.stats.Limit
	t.mu.Unlock()

	if !ok {
		return 0, errors.Exhausted(typ.String(), limit)
	}

	t.notify(Event{Type: EventAllocated, Handle: handle.Pack(typ, id)})
	return id, nil
}

// Free implements handle.Allocator. A value bound to the id is released
// as by Remove.
func (t *Table) Free(typ handle.Type, id uint64) error {
	if !typ.Valid() {
		return errors.InvalidType(errors.PhaseFree, uint8(typ), uint8(handle.TypeMax-1))
	}
	_, err := t.remove(handle.Pack(typ, id))
	return err
}

// Insert allocates a handle of type typ and binds value to it.
func (t *Table) Insert(typ handle.Type, value any) (handle.Handle, error) {
	h, err := handle.Allocate(t, typ)
	if err != nil {
		return 0, err
	}
	if err := t.Bind(h, value); err != nil {
		_ = t.Free(typ, h.ID())
		return 0, err
	}
	return h, nil
}

// Bind attaches value to an allocated handle, replacing nothing: binding
// an already bound handle fails. Values implementing rc.System are
// pinned with an internal reference until the handle is freed.
func (t *Table) Bind(h handle.Handle, value any) error {
	if !h.Type().Valid() {
		return errors.InvalidType(errors.PhaseLookup, uint8(h.Type()), uint8(handle.TypeMax-1))
	}

	sys, pin := value.(rc.System)
	if pin {
		sys.RetainInternal()
	}

	t.mu.Lock()
	sl, ok := t.spaces[h.Type()].lookup(h.ID())
	var err error
	switch {
	case !ok:
		err = errors.NotFound(errors.PhaseLookup, h.Type().String(), h.ID())
	case sl.value != nil:
		err = errors.New(errors.PhaseLookup, errors.KindInvalidInput).
			Resource(h.Type().String()).
			ID(h.ID()).
			Detail("handle already bound").
			Build()
	default:
		sl.value = value
		sl.pinned = pin
	}
	t.mu.Unlock()

	if err != nil {
		if pin {
			sys.ReleaseInternal()
		}
		return err
	}

	t.notify(Event{Type: EventBound, Handle: h, Value: value})
	return nil
}

// Get retrieves the value bound to h.
func (t *Table) Get(h handle.Handle) (any, bool) {
	if !h.Type().Valid() {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	sl, ok := t.spaces[h.Type()].lookup(h.ID())
	if !ok || sl.value == nil {
		return nil, false
	}
	return sl.value, true
}

// GetTyped retrieves the value bound to h only if h carries type typ.
func (t *Table) GetTyped(h handle.Handle, typ handle.Type) (any, error) {
	if h.Type() != typ {
		return nil, errors.TypeMismatch(h.Type().String(), h.ID(), typ.String())
	}
	v, ok := t.Get(h)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, typ.String(), h.ID())
	}
	return v, nil
}

// Live reports whether h refers to an allocated id.
func (t *Table) Live(h handle.Handle) bool {
	if !h.Type().Valid() {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.spaces[h.Type()].lookup(h.ID())
	return ok
}

// Remove frees h and returns the value that was bound to it.
func (t *Table) Remove(h handle.Handle) (any, error) {
	if !h.Type().Valid() {
		return nil, errors.InvalidType(errors.PhaseFree, uint8(h.Type()), uint8(handle.TypeMax-1))
	}
	return t.remove(h)
}

func (t *Table) remove(h handle.Handle) (any, error) {
	t.mu.Lock()
	old, ok := t.spaces[h.Type()].release(h.ID())
	t.mu.Unlock()

	if !ok {
		t.log.Warn("free of handle that is not live",
			zap.Stringer("handle", h),
			zap.Uint64("id", h.ID()))
		return nil, errors.DoubleFree(h.Type().String(), h.ID())
	}

	err := releaseValue(old)
	if err != nil {
		t.log.Warn("closing resource value failed",
			zap.Stringer("handle", h),
			zap.Error(err))
	}

	t.notify(Event{Type: EventFreed, Handle: h, Value: old.value})
	return old.value, err
}

// releaseValue gives up the table's hold on a freed slot's value.
func releaseValue(sl slot) error {
	switch v := sl.value.(type) {
	case nil:
		return nil
	case rc.System:
		if sl.pinned {
			v.ReleaseInternal()
		}
		return nil
	case io.Closer:
		return v.Close()
	case Dropper:
		v.Drop()
		return nil
	}
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live ids across all types.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for i := range t.spaces {
		n += int(t.spaces[i].stats.Live)
	}
	return n
}

// LenType returns the number of live ids of type typ.
func (t *Table) LenType(typ handle.Type) int {
	return int(t.Stats(typ).Live)
}

// Stats returns a snapshot of the counters for typ.
func (t *Table) Stats(typ handle.Type) TypeStats {
	if !typ.Valid() {
		return TypeStats{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.spaces[typ].stats
}

// Each iterates over all live handles. The table is read-locked during
// iteration, so fn must not call back into it.
func (t *Table) Each(fn func(handle.Handle, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.spaces {
		typ := handle.Type(i)
		stop := false
		t.spaces[i].each(func(id uint64, sl *slot) bool {
			if !fn(handle.Pack(typ, id), sl.value) {
				stop = true
			}
			return !stop
		})
		if stop {
			return
		}
	}
}

// Clear frees every live handle.
func (t *Table) Clear() error {
	// Collect handles first to avoid holding lock during Remove
	var handles []handle.Handle
	t.Each(func(h handle.Handle, _ any) bool {
		handles = append(handles, h)
		return true
	})

	var errs error
	for _, h := range handles {
		if _, err := t.Remove(h); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Close frees every live handle and stops accepting allocations.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.Clear()
	if err != nil {
		t.log.Error("resource table closed with errors", zap.Error(err))
	}
	return err
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
