package dynamo_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func planets() []dynamo.BodySpec {
	return []dynamo.BodySpec{
		{Mass: 700, Position: dynamo.V(0, 0), Velocity: dynamo.V(0, 0)},
		{Mass: 300, Position: dynamo.V(0, -200), Velocity: dynamo.V(1.5, 0)},
		{Mass: 700, Position: dynamo.V(0, 1600), Velocity: dynamo.V(0.8, 0)},
		{Mass: 300, Position: dynamo.V(0, 1400), Velocity: dynamo.V(2.3, 0)},
	}
}

func momentum(s *dynamo.Simulation) dynamo.Vec2 {
	return dynamo.Momentum(s.Snapshot().Bodies)
}

var _ = Describe("Simulation", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
	})

	Describe("construction", func() {
		It("rejects an empty body set", func() {
			_, err := dynamo.New(nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrEmptySystem))
		})

		It("rejects non-positive masses with the offending index", func() {
			specs := planets()
			specs[2].Mass = 0

			_, err := dynamo.New(specs, cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidBody)).To(BeTrue())

			var be *dynamo.BodyError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Index).To(Equal(2))
		})

		It("rejects a non-positive G", func() {
			cfg.G = 0
			_, err := dynamo.New(planets(), cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("cancels net momentum and recenters on the target", func() {
			cfg.Center = dynamo.V(960, 540)
			s, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			p := momentum(s)
			Expect(p.X).To(BeNumerically("~", 0, 1e-9))
			Expect(p.Y).To(BeNumerically("~", 0, 1e-9))

			c := dynamo.MassCenter(s.Snapshot().Bodies)
			Expect(c.X).To(BeNumerically("~", 960, 1e-9))
			Expect(c.Y).To(BeNumerically("~", 540, 1e-9))
		})
	})

	Describe("Step", func() {
		It("keeps momentum at zero over many steps", func() {
			s, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 500; i++ {
				Expect(s.Step()).To(Succeed())
			}
			p := momentum(s)
			Expect(p.Len()).To(BeNumerically("<", 1e-8))
			Expect(s.Steps()).To(Equal(500))
		})

		It("keeps the center of mass fixed", func() {
			cfg.Center = dynamo.V(100, 100)
			s, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 200; i++ {
				Expect(s.Step()).To(Succeed())
			}
			c := dynamo.MassCenter(s.Snapshot().Bodies)
			Expect(c.Sub(dynamo.V(100, 100)).Len()).To(BeNumerically("<", 1e-6))
		})

		It("pulls a resting pair together along the connecting axis", func() {
			specs := []dynamo.BodySpec{
				{Mass: 700, Position: dynamo.V(0, 0)},
				{Mass: 300, Position: dynamo.V(0, -200)},
			}
			s, err := dynamo.New(specs, cfg)
			Expect(err).NotTo(HaveOccurred())

			before := s.Snapshot()
			Expect(before.Bodies[0].Position.Y).To(BeNumerically("~", 60, 1e-12))
			Expect(before.Bodies[1].Position.Y).To(BeNumerically("~", -140, 1e-12))

			Expect(s.Step()).To(Succeed())
			after := s.Snapshot()

			a0 := 0.5 * 300 / (200.0 * 200.0)
			a1 := 0.5 * 700 / (200.0 * 200.0)

			Expect(after.Bodies[0].Velocity.X).To(Equal(0.0))
			Expect(after.Bodies[0].Velocity.Y).To(BeNumerically("~", -a0, 1e-15))
			Expect(after.Bodies[1].Velocity.Y).To(BeNumerically("~", a1, 1e-15))

			Expect(after.Bodies[0].Position.Y).To(BeNumerically("~", 60-a0, 1e-12))
			Expect(after.Bodies[1].Position.Y).To(BeNumerically("~", -140+a1, 1e-12))

			Expect(after.Bodies[0].Mass).To(Equal(700.0))
			Expect(after.Bodies[1].Mass).To(Equal(300.0))

			p := dynamo.Momentum(after.Bodies)
			Expect(p.Len()).To(BeNumerically("<", 1e-12))
		})

		It("never accelerates a lone body", func() {
			s, err := dynamo.New([]dynamo.BodySpec{{Mass: 5, Position: dynamo.V(3, 4), Velocity: dynamo.V(1, 1)}}, cfg)
			Expect(err).NotTo(HaveOccurred())

			start := s.Snapshot().Bodies[0]
			for i := 0; i < 10; i++ {
				Expect(s.Step()).To(Succeed())
			}
			end := s.Snapshot().Bodies[0]
			Expect(end.Velocity).To(Equal(start.Velocity))
			Expect(end.Position).To(Equal(start.Position))
		})

		It("is deterministic across instances", func() {
			a, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 300; i++ {
				Expect(a.Step()).To(Succeed())
				Expect(b.Step()).To(Succeed())
			}
			Expect(a.Snapshot()).To(Equal(b.Snapshot()))
		})

		It("matches the serial result when the compute phase runs in parallel", func() {
			serial := cfg
			serial.ParallelThreshold = 0
			parallel := cfg
			parallel.ParallelThreshold = 2

			a, err := dynamo.New(planets(), serial)
			Expect(err).NotTo(HaveOccurred())
			b, err := dynamo.New(planets(), parallel)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 100; i++ {
				Expect(a.Step()).To(Succeed())
				Expect(b.Step()).To(Succeed())
			}
			Expect(a.Snapshot()).To(Equal(b.Snapshot()))
		})

		It("fails on coincident bodies without touching the state", func() {
			specs := []dynamo.BodySpec{
				{Mass: 1, Position: dynamo.V(5, 5)},
				{Mass: 2, Position: dynamo.V(5, 5)},
			}
			s, err := dynamo.New(specs, cfg)
			Expect(err).NotTo(HaveOccurred())
			before := s.Snapshot()

			err = s.Step()
			Expect(errors.Is(err, dynamo.ErrDegenerateConfiguration)).To(BeTrue())

			var se *dynamo.SimulationError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(0))

			Expect(s.Snapshot()).To(Equal(before))
			Expect(s.Steps()).To(Equal(0))
		})
	})

	Describe("observers", func() {
		It("receive each committed step in order", func() {
			s, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			var seen []int
			s.AddObserver(dynamo.ObserverFunc(func(snap dynamo.Snapshot) {
				Expect(snap.Bodies).To(HaveLen(4))
				seen = append(seen, snap.Step)
			}))

			for i := 0; i < 3; i++ {
				Expect(s.Step()).To(Succeed())
			}
			Expect(seen).To(Equal([]int{1, 2, 3}))
		})

		It("never sees a partially moved system from another goroutine", func() {
			s, err := dynamo.New(planets(), cfg)
			Expect(err).NotTo(HaveOccurred())

			var wg sync.WaitGroup
			done := make(chan struct{})
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					snap := s.Snapshot()
					Expect(dynamo.Momentum(snap.Bodies).Len()).To(BeNumerically("<", 1e-8))
				}
			}()

			for i := 0; i < 200; i++ {
				Expect(s.Step()).To(Succeed())
			}
			close(done)
			wg.Wait()
		})
	})
})
