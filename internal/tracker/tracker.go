// Package tracker turns a live charge collection into an ordered, coalesced
// stream of add/move/remove deltas so that field accumulators can be updated
// incrementally instead of re-summing every charge each frame.
package tracker

import (
	"container/list"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
)

// Delta is one charge's net change since the queue was last cleared.
// Old == nil is an addition, New == nil a removal, both set a move.
type Delta struct {
	ID     charge.ID
	Charge float64
	Old    *r2.Vec
	New    *r2.Vec
}

func (d Delta) IsAddition() bool { return d.Old == nil && d.New != nil }
func (d Delta) IsRemoval() bool  { return d.Old != nil && d.New == nil }
func (d Delta) IsMove() bool     { return d.Old != nil && d.New != nil }

// Tracker records deltas from an attached charge.Source. At most one pending
// entry exists per particle that is still being coalesced; entries stay in
// the order their particle was first touched.
type Tracker struct {
	log     *zap.Logger
	src     charge.Source
	cancel  func()
	queue   *list.List
	latest  map[charge.ID]*list.Element
	tracked map[charge.ID]struct{}
}

func New(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		log:     logger.Named("tracker"),
		queue:   list.New(),
		latest:  make(map[charge.ID]*list.Element),
		tracked: make(map[charge.ID]struct{}),
	}
}

// Attach subscribes to src and rebuilds the queue from its current charges.
func (t *Tracker) Attach(src charge.Source) {
	if t.src != nil {
		t.Detach()
	}
	t.src = src
	t.cancel = src.Subscribe(t)
	t.Rebuild()
}

// Detach stops observing the source. Pending deltas are kept.
func (t *Tracker) Detach() {
	if t.cancel != nil {
		t.cancel()
	}
	t.src = nil
	t.cancel = nil
	t.tracked = make(map[charge.ID]struct{})
}

func (t *Tracker) ChargeAdded(c charge.Charge) {
	t.tracked[c.ID] = struct{}{}
	pos := c.Position
	t.push(Delta{ID: c.ID, Charge: c.Q, New: &pos})
}

func (t *Tracker) ChargeMoved(c charge.Charge, old r2.Vec) {
	if _, ok := t.tracked[c.ID]; !ok {
		t.log.Debug("ignoring move of untracked charge", zap.Stringer("id", c.ID))
		return
	}

	if d := t.pending(c.ID); d != nil && d.New != nil && *d.New == old && d.Charge == c.Q {
		pos := c.Position
		d.New = &pos
		return
	}

	pos := c.Position
	t.push(Delta{ID: c.ID, Charge: c.Q, Old: &old, New: &pos})
}

func (t *Tracker) ChargeRemoved(c charge.Charge) {
	if _, ok := t.tracked[c.ID]; !ok {
		t.log.Debug("ignoring removal of untracked charge", zap.Stringer("id", c.ID))
		return
	}
	delete(t.tracked, c.ID)

	if e, ok := t.latest[c.ID]; ok {
		d := e.Value.(*Delta)
		if d.New != nil && *d.New == c.Position && d.Charge == c.Q {
			d.New = nil
			if d.Old == nil {
				// added and removed within the same frame
				t.queue.Remove(e)
				delete(t.latest, c.ID)
			}
			return
		}
	}

	pos := c.Position
	t.push(Delta{ID: c.ID, Charge: c.Q, Old: &pos})
}

// Drain returns a copy of the pending deltas in order. The queue is left
// untouched until Clear.
func (t *Tracker) Drain() []Delta {
	out := make([]Delta, 0, t.queue.Len())
	for e := t.queue.Front(); e != nil; e = e.Next() {
		d := e.Value.(*Delta)
		if d.Old == nil && d.New == nil {
			continue
		}
		out = append(out, Delta{
			ID:     d.ID,
			Charge: d.Charge,
			Old:    clonePos(d.Old),
			New:    clonePos(d.New),
		})
	}
	return out
}

// Clear marks the consumer as caught up.
func (t *Tracker) Clear() {
	t.queue.Init()
	t.latest = make(map[charge.ID]*list.Element)
}

// Rebuild clears the queue and re-adds every active charge as an addition.
func (t *Tracker) Rebuild() {
	t.Clear()
	if t.src == nil {
		return
	}

	t.tracked = make(map[charge.ID]struct{})
	charges := t.src.Charges()
	for _, c := range charges {
		t.ChargeAdded(c)
	}
	t.log.Debug("rebuilt delta queue", zap.Int("charges", len(charges)))
}

func (t *Tracker) Len() int { return t.queue.Len() }

func (t *Tracker) pending(id charge.ID) *Delta {
	e, ok := t.latest[id]
	if !ok {
		return nil
	}
	return e.Value.(*Delta)
}

func (t *Tracker) push(d Delta) {
	t.latest[d.ID] = t.queue.PushBack(&d)
}

func clonePos(p *r2.Vec) *r2.Vec {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
