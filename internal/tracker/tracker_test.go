package tracker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/tracker"
)

var _ = Describe("Tracker", func() {
	var (
		set *charge.Set
		tr  *tracker.Tracker
	)

	BeforeEach(func() {
		set = charge.NewSet()
		tr = tracker.New(nil)
	})

	Describe("Attach", func() {
		It("rebuilds from the charges already present", func() {
			set.Add(r2.Vec{X: 1}, 1)
			set.Add(r2.Vec{X: 2}, -2)

			tr.Attach(set)

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(2))
			for _, d := range deltas {
				Expect(d.IsAddition()).To(BeTrue())
			}
			Expect(*deltas[1].New).To(Equal(r2.Vec{X: 2}))
			Expect(deltas[1].Charge).To(Equal(-2.0))
		})
	})

	Describe("coalescing within a frame", func() {
		BeforeEach(func() {
			tr.Attach(set)
		})

		It("collapses an add followed by many moves into one add", func() {
			id := set.Add(r2.Vec{}, 1)
			for i := 1; i <= 25; i++ {
				Expect(set.Move(id, r2.Vec{X: float64(i), Y: 0.5})).To(Succeed())
			}

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(1))
			Expect(deltas[0].IsAddition()).To(BeTrue())
			Expect(*deltas[0].New).To(Equal(r2.Vec{X: 25, Y: 0.5}))
		})

		It("drops an add followed by a removal", func() {
			id := set.Add(r2.Vec{X: 3}, 1)
			Expect(set.Move(id, r2.Vec{X: 4})).To(Succeed())
			Expect(set.Remove(id)).To(Succeed())

			Expect(tr.Drain()).To(BeEmpty())
			Expect(tr.Len()).To(Equal(0))
		})

		It("keeps entries in first-touch order", func() {
			a := set.Add(r2.Vec{X: 1}, 1)
			b := set.Add(r2.Vec{X: 2}, 1)
			Expect(set.Move(a, r2.Vec{X: 5})).To(Succeed())

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(2))
			Expect(deltas[0].ID).To(Equal(a))
			Expect(deltas[1].ID).To(Equal(b))
		})
	})

	Describe("after the consumer caught up", func() {
		var id charge.ID

		BeforeEach(func() {
			id = set.Add(r2.Vec{X: 1, Y: 1}, 2)
			tr.Attach(set)
			tr.Clear()
		})

		It("records repeated moves as a single move", func() {
			Expect(set.Move(id, r2.Vec{X: 2, Y: 1})).To(Succeed())
			Expect(set.Move(id, r2.Vec{X: 3, Y: 1})).To(Succeed())
			Expect(set.Move(id, r2.Vec{X: 4, Y: 1})).To(Succeed())

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(1))
			Expect(deltas[0].IsMove()).To(BeTrue())
			Expect(*deltas[0].Old).To(Equal(r2.Vec{X: 1, Y: 1}))
			Expect(*deltas[0].New).To(Equal(r2.Vec{X: 4, Y: 1}))
		})

		It("records a removal from the original position", func() {
			Expect(set.Remove(id)).To(Succeed())

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(1))
			Expect(deltas[0].IsRemoval()).To(BeTrue())
			Expect(*deltas[0].Old).To(Equal(r2.Vec{X: 1, Y: 1}))
		})

		It("folds a move and a removal into one removal", func() {
			Expect(set.Move(id, r2.Vec{X: 9, Y: 9})).To(Succeed())
			Expect(set.Remove(id)).To(Succeed())

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(1))
			Expect(deltas[0].IsRemoval()).To(BeTrue())
			Expect(*deltas[0].Old).To(Equal(r2.Vec{X: 1, Y: 1}))
		})
	})

	Describe("precondition violations", func() {
		It("ignores notifications for untracked charges", func() {
			tr.Attach(set)
			tr.ChargeMoved(charge.Charge{ID: 99, Position: r2.Vec{X: 1}, Q: 1}, r2.Vec{})
			tr.ChargeRemoved(charge.Charge{ID: 99, Q: 1})

			Expect(tr.Drain()).To(BeEmpty())
		})
	})

	Describe("Drain", func() {
		It("returns copies the caller may mutate", func() {
			tr.Attach(set)
			set.Add(r2.Vec{X: 1}, 1)

			first := tr.Drain()
			first[0].New.X = 100

			Expect(tr.Drain()[0].New.X).To(Equal(1.0))
		})
	})

	Describe("Rebuild", func() {
		It("replaces pending deltas with additions of current charges", func() {
			tr.Attach(set)
			a := set.Add(r2.Vec{X: 1}, 1)
			set.Add(r2.Vec{X: 2}, 1)
			tr.Clear()
			Expect(set.Move(a, r2.Vec{X: 7})).To(Succeed())

			tr.Rebuild()

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(2))
			Expect(deltas[0].IsAddition()).To(BeTrue())
			Expect(*deltas[0].New).To(Equal(r2.Vec{X: 7}))
		})
	})

	Describe("Detach", func() {
		It("stops recording changes", func() {
			tr.Attach(set)
			tr.Clear()
			tr.Detach()

			set.Add(r2.Vec{}, 1)
			Expect(tr.Drain()).To(BeEmpty())
		})

		It("re-attaching to another source rebuilds from it", func() {
			tr.Attach(set)
			other := charge.NewSet()
			other.Add(r2.Vec{Y: 3}, 5)

			tr.Attach(other)
			set.Add(r2.Vec{}, 1)

			deltas := tr.Drain()
			Expect(deltas).To(HaveLen(1))
			Expect(deltas[0].Charge).To(Equal(5.0))
		})
	})
})
