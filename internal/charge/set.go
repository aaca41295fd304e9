package charge

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Set is an in-memory Source. Notifications are delivered synchronously
// in subscription order. Set is not safe for concurrent use.
type Set struct {
	nextID    ID
	order     []ID
	charges   map[ID]*Charge
	listeners []*subscription
}

type subscription struct {
	l Listener
}

func NewSet() *Set {
	return &Set{
		nextID:  1,
		charges: make(map[ID]*Charge),
	}
}

func (s *Set) Add(pos r2.Vec, q float64) ID {
	id := s.nextID
	s.nextID++

	c := &Charge{ID: id, Position: pos, Q: q}
	s.charges[id] = c
	s.order = append(s.order, id)

	for _, sub := range s.snapshot() {
		sub.l.ChargeAdded(*c)
	}
	return id
}

func (s *Set) Move(id ID, pos r2.Vec) error {
	c, ok := s.charges[id]
	if !ok {
		return ErrUnknownCharge
	}
	if c.Position == pos {
		return nil
	}

	old := c.Position
	c.Position = pos

	for _, sub := range s.snapshot() {
		sub.l.ChargeMoved(*c, old)
	}
	return nil
}

func (s *Set) Remove(id ID) error {
	c, ok := s.charges[id]
	if !ok {
		return ErrUnknownCharge
	}

	delete(s.charges, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	for _, sub := range s.snapshot() {
		sub.l.ChargeRemoved(*c)
	}
	return nil
}

// Reset removes every charge, notifying each removal in insertion order.
func (s *Set) Reset() {
	ids := make([]ID, len(s.order))
	copy(ids, s.order)
	for _, id := range ids {
		_ = s.Remove(id)
	}
}

func (s *Set) Get(id ID) (Charge, bool) {
	c, ok := s.charges[id]
	if !ok {
		return Charge{}, false
	}
	return *c, true
}

func (s *Set) Len() int { return len(s.order) }

// IDs returns the active ids in insertion order.
func (s *Set) IDs() []ID {
	ids := make([]ID, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *Set) Charges() []Charge {
	out := make([]Charge, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.charges[id])
	}
	return out
}

func (s *Set) Subscribe(l Listener) func() {
	sub := &subscription{l: l}
	s.listeners = append(s.listeners, sub)
	return func() {
		for i, other := range s.listeners {
			if other == sub {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// snapshot lets listeners unsubscribe while being notified.
func (s *Set) snapshot() []*subscription {
	subs := make([]*subscription, len(s.listeners))
	copy(subs, s.listeners)
	return subs
}
