package deferred

import (
	"sync"

	"github.com/emirpasic/gods/trees/btree"
	"github.com/emirpasic/gods/utils"
	"go.uber.org/zap"

	"github.com/wippyai/ngfx/errors"
	"github.com/wippyai/ngfx/rc"
)

const treeOrder = 16

// Queue pins objects through their internal counter until a fence value
// is reached. It is safe for concurrent use.
type Queue struct {
	log       *zap.Logger
	tree      *btree.Tree // fence -> []rc.System
	mu        sync.Mutex
	completed uint64
	pending   int
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger used for fence completion.
func WithLogger(l *zap.Logger) Option {
	return func(q *Queue) {
		q.log = l
	}
}

// New creates an empty queue. No fence has completed yet.
func New(opts ...Option) *Queue {
	q := &Queue{
		log:  zap.NewNop(),
		tree: btree.NewWith(treeOrder, utils.UInt64Comparator),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Defer keeps obj alive until fence completes. It reports false, without
// pinning obj, when fence has already completed.
func (q *Queue) Defer(obj rc.System, fence uint64) bool {
	if obj == nil {
		panic(errors.NilPointer("rc.System"))
	}

	obj.RetainInternal()

	q.mu.Lock()
	if fence <= q.completed {
		q.mu.Unlock()
		obj.ReleaseInternal()
		return false
	}

	var objs []rc.System
	if v, found := q.tree.Get(fence); found {
		objs = v.([]rc.System)
	}
	q.tree.Put(fence, append(objs, obj))
	q.pending++
	q.mu.Unlock()
	return true
}

// Complete marks every fence up to and including fence as reached and
// releases the objects waiting on them. Completing a fence that is not
// newer than the last completed one does nothing. It returns the number
// of objects released.
func (q *Queue) Complete(fence uint64) int {
	q.mu.Lock()
	if fence <= q.completed {
		q.mu.Unlock()
		return 0
	}
	q.completed = fence

	var ready []rc.System
	for !q.tree.Empty() {
		key := q.tree.LeftKey().(uint64)
		if key > fence {
			break
		}
		ready = append(ready, q.tree.LeftValue().([]rc.System)...)
		q.tree.Remove(key)
	}
	q.pending -= len(ready)
	q.mu.Unlock()

	// destroy callbacks may defer again, so release outside the lock
	release(ready)

	if len(ready) > 0 {
		q.log.Debug("fence completed",
			zap.Uint64("fence", fence),
			zap.Int("released", len(ready)))
	}
	return len(ready)
}

// Completed returns the last completed fence value.
func (q *Queue) Completed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// Pending returns the number of pinned objects.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Flush releases every pinned object regardless of its fence, as on
// device loss or shutdown. The completed fence is left unchanged.
func (q *Queue) Flush() int {
	q.mu.Lock()
	var ready []rc.System
	it := q.tree.Iterator()
	for it.Next() {
		ready = append(ready, it.Value().([]rc.System)...)
	}
	q.tree.Clear()
	q.pending = 0
	q.mu.Unlock()

	release(ready)

	if len(ready) > 0 {
		q.log.Info("deferred queue flushed", zap.Int("released", len(ready)))
	}
	return len(ready)
}

func release(objs []rc.System) {
	for _, obj := range objs {
		obj.ReleaseInternal()
	}
}
