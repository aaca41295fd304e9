package charge

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

var ErrUnknownCharge = errors.New("charge: unknown charge id")

// ID is an opaque handle for a particle. IDs are never reused within a Set.
type ID uint64

func (id ID) String() string { return fmt.Sprintf("q%d", uint64(id)) }

type Charge struct {
	ID       ID
	Position r2.Vec
	Q        float64
}

// Listener receives membership and position notifications from a Source.
// ChargeMoved carries the charge at its new position.
type Listener interface {
	ChargeAdded(c Charge)
	ChargeRemoved(c Charge)
	ChargeMoved(c Charge, old r2.Vec)
}

// Source is a live collection of active charges.
type Source interface {
	Charges() []Charge
	Subscribe(l Listener) (cancel func())
}
