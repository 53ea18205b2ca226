package deferred

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/ngfx/errors"
	"github.com/wippyai/ngfx/rc"
)

type buffer struct {
	rc.Object
	destroys atomic.Int32
}

func newBuffer() *buffer {
	b := &buffer{}
	b.Init(func() { b.destroys.Add(1) })
	return b
}

func TestQueue_KeepsAliveUntilFence(t *testing.T) {
	q := New()
	b := newBuffer()
	p := rc.Adopt(b)

	if !q.Defer(b, 10) {
		t.Fatal("Defer on a pending fence should pin")
	}
	p.Reset()

	if b.destroys.Load() != 0 {
		t.Fatal("destroyed before its fence completed")
	}
	if n := q.Complete(9); n != 0 {
		t.Fatalf("Complete(9) released %d, want 0", n)
	}
	if b.destroys.Load() != 0 {
		t.Fatal("destroyed by an earlier fence")
	}

	if n := q.Complete(10); n != 1 {
		t.Fatalf("Complete(10) released %d, want 1", n)
	}
	if b.destroys.Load() != 1 {
		t.Fatalf("destroyed %d times, want 1", b.destroys.Load())
	}
	if q.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", q.Pending())
	}
}

func TestQueue_ExternalHolderOutlivesFence(t *testing.T) {
	q := New()
	b := newBuffer()

	q.Defer(b, 1)
	q.Complete(1)

	if b.destroys.Load() != 0 {
		t.Fatal("fence completion must not destroy an externally held object")
	}
	ext, in := b.RefCounts()
	if ext != 1 || in != 1 {
		t.Fatalf("counts = (%d, %d), want (1, 1)", ext, in)
	}

	b.Release()
	if b.destroys.Load() != 1 {
		t.Fatal("last release should destroy")
	}
}

func TestQueue_CompleteReleasesInFenceOrder(t *testing.T) {
	q := New()
	var order []int

	for i, fence := range []uint64{30, 10, 20, 10} {
		b := &buffer{}
		i := i
		b.Init(func() { order = append(order, i) })
		q.Defer(b, fence)
		b.Release()
	}

	if q.Pending() != 4 {
		t.Fatalf("Pending() = %d, want 4", q.Pending())
	}
	if n := q.Complete(20); n != 3 {
		t.Fatalf("Complete(20) released %d, want 3", n)
	}

	want := []int{1, 3, 2}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	q.Complete(30)
	if len(order) != 4 || order[3] != 0 {
		t.Fatalf("order = %v", order)
	}
}

func TestQueue_CompletedFenceIsMonotonic(t *testing.T) {
	q := New()
	b := newBuffer()

	q.Complete(5)
	if q.Completed() != 5 {
		t.Fatalf("Completed() = %d, want 5", q.Completed())
	}
	if n := q.Complete(3); n != 0 {
		t.Fatalf("Complete(3) released %d", n)
	}
	if q.Completed() != 5 {
		t.Fatal("completing an older fence must not move the counter back")
	}

	if q.Defer(b, 5) {
		t.Fatal("Defer on a completed fence should not pin")
	}
	if _, in := b.RefCounts(); in != 1 {
		t.Fatalf("internal = %d, want 1", in)
	}
	if q.Pending() != 0 {
		t.Fatal("nothing should be pending")
	}
}

func TestQueue_Flush(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	q := New(WithLogger(zap.New(core)))

	bufs := []*buffer{newBuffer(), newBuffer(), newBuffer()}
	for i, b := range bufs {
		q.Defer(b, uint64(100+i))
		b.Release()
	}

	if n := q.Flush(); n != 3 {
		t.Fatalf("Flush() released %d, want 3", n)
	}
	for i, b := range bufs {
		if b.destroys.Load() != 1 {
			t.Errorf("buffer %d destroyed %d times", i, b.destroys.Load())
		}
	}
	if q.Completed() != 0 {
		t.Fatal("Flush must not complete fences")
	}
	if logs.FilterMessage("deferred queue flushed").Len() != 1 {
		t.Fatal("expected flush to be logged")
	}
	if q.Flush() != 0 {
		t.Fatal("second Flush should release nothing")
	}
}

func TestQueue_DeferFromDestroy(t *testing.T) {
	q := New()
	child := newBuffer()

	parent := &buffer{}
	parent.Init(func() {
		// a destroyed parent hands its child to the next fence
		q.Defer(child, 2)
		child.Release()
	})
	q.Defer(parent, 1)
	parent.Release()

	q.Complete(1)
	if child.destroys.Load() != 0 || q.Pending() != 1 {
		t.Fatal("child should wait for fence 2")
	}
	q.Complete(2)
	if child.destroys.Load() != 1 {
		t.Fatal("child should be destroyed at fence 2")
	}
}

func TestQueue_DeferNilPanics(t *testing.T) {
	q := New()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !stderrors.Is(err, errors.ErrNilPointer) {
			t.Fatalf("recovered %v, want nil_pointer error", r)
		}
	}()
	q.Defer(nil, 1)
}

func TestQueue_Concurrent(t *testing.T) {
	q := New()

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	bufs := make([][]*buffer, producers)
	for p := 0; p < producers; p++ {
		bufs[p] = make([]*buffer, perProducer)
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				b := newBuffer()
				bufs[p][i] = b
				// racing the completer, the fence may already be reached
				q.Defer(b, uint64(i+1))
				b.Release()
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for fence := uint64(1); fence <= perProducer; fence++ {
			q.Complete(fence)
		}
	}()

	wg.Wait()
	<-done
	
	for p := range bufs {
		for i, b := range bufs[p] {
			if n := b.destroys.Load(); n != 1 {
				t.Fatalf("buffer %d/%d destroyed %d times", p, i, n)
			}
		}
	}
	if q.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", q.Pending())
	}
}
