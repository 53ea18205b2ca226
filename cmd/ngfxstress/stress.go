package main

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/ngfx/config"
	"github.com/wippyai/ngfx/deferred"
	"github.com/wippyai/ngfx/handle"
	"github.com/wippyai/ngfx/rc"
	"github.com/wippyai/ngfx/resource"
)

// handles a table worker keeps before retiring the oldest
const retireDepth = 8

// object is the reference-counted resource every worker churns.
type object struct {
	rc.Object
	stats    *stats
	handle   handle.Handle
	destroys atomic.Int32
}

func newObject(s *stats) *object {
	o := &object{stats: s}
	o.Init(o.destroy)
	s.created.Add(1)
	return o
}

func (o *object) destroy() {
	o.stats.destroyed.Add(1)
	if o.destroys.Add(1) > 1 {
		o.stats.doubleDestroys.Add(1)
	}
}

type stats struct {
	created        atomic.Int64
	destroyed      atomic.Int64
	doubleDestroys atomic.Int64
	clones         atomic.Int64
	handles        atomic.Int64
	freed          atomic.Int64
	exhausted      atomic.Int64
	deferred       atomic.Int64
	fences         atomic.Int64
	start          time.Time
}

// report is a point-in-time view of a run.
type report struct {
	Created        int64
	Destroyed      int64
	DoubleDestroys int64
	Clones         int64
	Handles        int64
	Freed          int64
	Exhausted      int64
	Deferred       int64
	Fences         int64
	Elapsed        time.Duration
}

func (s *stats) snapshot() report {
	return report{
		Created:        s.created.Load(),
		Destroyed:      s.destroyed.Load(),
		DoubleDestroys: s.doubleDestroys.Load(),
		Clones:         s.clones.Load(),
		Handles:        s.handles.Load(),
		Freed:          s.freed.Load(),
		Exhausted:      s.exhausted.Load(),
		Deferred:       s.deferred.Load(),
		Fences:         s.fences.Load(),
		Elapsed:        time.Since(s.start),
	}
}

// OK reports whether every created object was destroyed exactly once.
func (r report) OK() bool {
	return r.DoubleDestroys == 0 && r.Created == r.Destroyed
}

type stresser struct {
	cfg   *config.Config
	log   *zap.Logger
	table *resource.Table
	queue *deferred.Queue
	types []handle.Type
	stats stats
}

func newStresser(cfg *config.Config, log *zap.Logger) *stresser {
	s := &stresser{
		cfg:   cfg,
		log:   log,
		table: resource.NewTable(resource.WithLimits(cfg.Limits), resource.WithLogger(log.Named("resource"))),
		queue: deferred.New(deferred.WithLogger(log.Named("deferred"))),
		types: churnTypes(cfg),
	}
	s.stats.start = time.Now()
	s.table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		if e.Type == resource.EventFreed {
			s.stats.freed.Add(1)
		}
	}))
	return s
}

// churnTypes returns the configured types, or every named type when the
// config sets no limits.
func churnTypes(cfg *config.Config) []handle.Type {
	var types []handle.Type
	for t := range cfg.Limits {
		types = append(types, t)
	}
	if len(types) == 0 {
		for t := handle.Buffer; t <= handle.Fence; t++ {
			types = append(types, t)
		}
		types = append(types, handle.RTAccelerationStructure)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// run drives pointer, table and deferred churn until every worker is
// done or ctx is cancelled, then tears everything down.
func (s *stresser) run(ctx context.Context) report {
	shared := make([]rc.Ptr[*object], s.cfg.Objects)
	for i := range shared {
		shared[i] = rc.Adopt(newObject(&s.stats))
	}

	fenceCtx, stopFences := context.WithCancel(ctx)
	fencesDone := make(chan struct{})
	go func() {
		defer close(fencesDone)
		s.completeFences(fenceCtx)
	}()

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			s.pointerWorker(ctx, w, shared)
		}(w)
		go func(w int) {
			defer wg.Done()
			s.tableWorker(ctx, w)
		}(w)
	}
	wg.Wait()
	stopFences()
	<-fencesDone

	for i := range shared {
		shared[i].Reset()
	}
	if err := s.table.Close(); err != nil {
		s.log.Error("closing resource table", zap.Error(err))
	}
	if n := s.queue.Flush(); n > 0 {
		s.log.Debug("released pins of unfinished fences", zap.Int("count", n))
	}

	rep := s.stats.snapshot()
	s.log.Info("stress run finished",
		zap.Int64("created", rep.Created),
		zap.Int64("destroyed", rep.Destroyed),
		zap.Int64("double_destroys", rep.DoubleDestroys),
		zap.Int64("fences", rep.Fences),
		zap.Duration("elapsed", rep.Elapsed))
	return rep
}

func (s *stresser) completeFences(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FenceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.queue.Complete(s.queue.Completed() + 1)
			s.stats.fences.Add(1)
		}
	}
}

// pointerWorker clones shared objects, sometimes hands the clone to the
// deferred queue, and drops it.
func (s *stresser) pointerWorker(ctx context.Context, w int, shared []rc.Ptr[*object]) {
	rng := rand.New(rand.NewPCG(uint64(w), 0x6e676678))
	for i := 0; i < s.cfg.Iterations; i++ {
		if ctx.Err() != nil {
			return
		}
		p := shared[rng.IntN(len(shared))].Clone()
		s.stats.clones.Add(1)
		if rng.IntN(4) == 0 {
			s.deferUntilNextFence(p.Get())
		}
		p.Reset()
	}
}

// tableWorker creates objects behind handles and retires the oldest
// through the deferred queue.
func (s *stresser) tableWorker(ctx context.Context, w int) {
	rng := rand.New(rand.NewPCG(uint64(w), 0x7461626c))
	var held []rc.Ptr[*object]
	retire := func() {
		p := &held[0]
		obj := p.Get()
		s.deferUntilNextFence(obj)
		if _, err := s.table.Remove(obj.handle); err != nil {
			s.log.Error("remove failed", zap.Stringer("handle", obj.handle), zap.Error(err))
		}
		p.Reset()
		held = held[1:]
	}

	for i := 0; i < s.cfg.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}
		res := s.create(s.types[rng.IntN(len(s.types))])
		p, err := res.Take()
		if err != nil {
			s.stats.exhausted.Add(1)
			if len(held) > 0 {
				retire()
			}
			continue
		}
		held = append(held, rc.Ptr[*object]{})
		held[len(held)-1].Swap(&p)
		if len(held) > retireDepth {
			retire()
		}
	}
	for len(held) > 0 {
		retire()
	}
}

// create binds a new object to a fresh handle of type typ.
func (s *stresser) create(typ handle.Type) rc.ResultPtr[*object, rc.Result] {
	obj := newObject(&s.stats)
	h, err := s.table.Insert(typ, obj)
	if err != nil {
		obj.Release()
		s.log.Debug("create failed", zap.Stringer("type", typ), zap.Error(err))
		return rc.NewResult[*object](rc.ResultOutOfMemory)
	}
	obj.handle = h
	s.stats.handles.Add(1)
	return rc.AdoptResult(obj, rc.ResultOK)
}

func (s *stresser) deferUntilNextFence(obj *object) {
	if s.queue.Defer(obj, s.queue.Completed()+1) {
		s.stats.deferred.Add(1)
	}
}
