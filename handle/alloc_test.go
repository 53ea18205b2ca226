package handle

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/wippyai/ngfx/errors"
)

// fakeAllocator hands out sequential ids per type and records every
// free of an id that is not live as a contract violation.
type fakeAllocator struct {
	mu         sync.Mutex
	next       map[Type]uint64
	live       map[Handle]bool
	limit      int
	violations int
	overflow   bool
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{
		next: make(map[Type]uint64),
		live: make(map[Handle]bool),
	}
}

func (a *fakeAllocator) Allocate(t Type) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.overflow {
		a.live[Handle(t)] = true
		return MaxID + 1, nil
	}
	if a.limit > 0 && len(a.live) >= a.limit {
		return 0, errors.Exhausted(t.String(), uint32(a.limit))
	}
	a.next[t]++
	id := a.next[t]
	a.live[Pack(t, id)] = true
	return id, nil
}

func (a *fakeAllocator) Free(t Type, id uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := Pack(t, id)
	if id > MaxID {
		key = Handle(t)
	}
	if !a.live[key] {
		a.violations++
		return errors.DoubleFree(t.String(), id)
	}
	delete(a.live, key)
	return nil
}

func TestAllocate_Texture(t *testing.T) {
	a := newFakeAllocator()

	h, err := Allocate(a, Texture)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if h.Type() != Texture {
		t.Fatalf("Type() = %v, want Texture", h.Type())
	}
	if h.ID() == 0 {
		t.Fatal("expected non-zero id")
	}

	if err := Free(a, h); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if a.violations != 0 {
		t.Fatalf("violations = %d after first free", a.violations)
	}

	err = Free(a, h)
	if !stderrors.Is(err, errors.ErrDoubleFree) {
		t.Fatalf("second Free err = %v, want double_free", err)
	}
	if a.violations != 1 {
		t.Fatalf("violations = %d, want 1", a.violations)
	}
}

func TestAllocate_InvalidType(t *testing.T) {
	a := newFakeAllocator()
	for _, typ := range []Type{TypeMax, Type(16), Type(255)} {
		if _, err := Allocate(a, typ); !stderrors.Is(err, errors.ErrInvalidType) {
			t.Errorf("Allocate(%v) err = %v, want invalid_type", typ, err)
		}
	}
	if len(a.live) != 0 {
		t.Fatal("allocator should not be consulted for invalid types")
	}
}

func TestAllocate_PropagatesExhaustion(t *testing.T) {
	a := newFakeAllocator()
	a.limit = 2

	for i := 0; i < 2; i++ {
		if _, err := Allocate(a, Buffer); err != nil {
			t.Fatalf("Allocate %d failed: %v", i, err)
		}
	}
	_, err := Allocate(a, Buffer)
	if !stderrors.Is(err, errors.ErrExhausted) {
		t.Fatalf("err = %v, want exhausted", err)
	}
}

func TestAllocate_RejectsOversizedID(t *testing.T) {
	a := newFakeAllocator()
	a.overflow = true

	_, err := Allocate(a, Sampler)
	if !stderrors.Is(err, errors.ErrInvalidID) {
		t.Fatalf("err = %v, want invalid_id", err)
	}
	if len(a.live) != 0 {
		t.Fatal("oversized id should be returned to the allocator")
	}
}

func TestAllocate_Unique(t *testing.T) {
	a := newFakeAllocator()
	seen := make(map[Handle]bool)
	for _, typ := range []Type{Buffer, Texture, Buffer, Pipeline, Texture} {
		h, err := Allocate(a, typ)
		if err != nil {
			t.Fatalf("Allocate failed: %v", err)
		}
		if seen[h] {
			t.Fatalf("duplicate handle %v", h)
		}
		seen[h] = true
	}
}
