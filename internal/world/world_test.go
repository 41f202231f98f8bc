package world_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spheresim/internal/collision"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/world"
)

func ground() collision.Plane {
	p, err := collision.NewPlane(mgl64.Vec3{0, 1, 0}, -1)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func sphere(pos, vel mgl64.Vec3, mass, radius float64) *physics.Body {
	b, err := physics.New(physics.Spec{Position: pos, Velocity: vel, Mass: mass, Radius: radius})
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("World", func() {
	var w *world.World

	BeforeEach(func() {
		w = world.New(ground())
	})

	Describe("AddObject", func() {
		It("hands out stable sequential handles", func() {
			for i := 0; i < 5; i++ {
				h, err := w.AddObject(sphere(mgl64.Vec3{float64(i) * 3, 5, 0}, mgl64.Vec3{}, 1, 0.5))
				Expect(err).NotTo(HaveOccurred())
				Expect(h).To(Equal(world.Handle(i)))
			}
			first, ok := w.Body(0)
			Expect(ok).To(BeTrue())

			for i := 0; i < 10; i++ {
				Expect(w.Update(0.01)).To(Succeed())
			}
			again, ok := w.Body(0)
			Expect(ok).To(BeTrue())
			Expect(again).To(BeIdenticalTo(first))
			Expect(w.Len()).To(Equal(5))
		})

		It("rejects nil bodies", func() {
			_, err := w.AddObject(nil)
			Expect(err).To(MatchError(world.ErrNilBody))
		})

		It("rejects a body that already belongs to a world", func() {
			b := sphere(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, 1, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			_, err = world.New(ground()).AddObject(b)
			Expect(err).To(MatchError(world.ErrAlreadyAdded))
		})

		It("grows without a limit by default", func() {
			for i := 0; i < 100; i++ {
				_, err := w.AddObject(sphere(mgl64.Vec3{float64(i), 5, 0}, mgl64.Vec3{}, 1, 0.1))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(w.Len()).To(Equal(100))
		})

		It("enforces MaxBodies when set", func() {
			w.MaxBodies = 2
			for i := 0; i < 2; i++ {
				_, err := w.AddObject(sphere(mgl64.Vec3{float64(i) * 3, 5, 0}, mgl64.Vec3{}, 1, 0.5))
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := w.AddObject(sphere(mgl64.Vec3{9, 5, 0}, mgl64.Vec3{}, 1, 0.5))
			Expect(err).To(MatchError(world.ErrWorldFull))
			Expect(w.Len()).To(Equal(2))
		})

		It("defers bodies added during a step to the step boundary", func() {
			_, err := w.AddObject(sphere(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, 1, 0.5))
			Expect(err).NotTo(HaveOccurred())

			var (
				spawned    world.Handle
				lenInStep  int
				resolvable bool
				added      bool
			)
			w.AddObserver(func(w *world.World, dt float64) {
				if added {
					return
				}
				added = true
				h, err := w.AddObject(sphere(mgl64.Vec3{5, 5, 0}, mgl64.Vec3{}, 1, 0.5))
				Expect(err).NotTo(HaveOccurred())
				spawned = h
				lenInStep = w.Len()
				_, resolvable = w.Body(h)
			})

			Expect(w.Update(0.01)).To(Succeed())
			Expect(lenInStep).To(Equal(1))
			Expect(resolvable).To(BeTrue())
			Expect(spawned).To(Equal(world.Handle(1)))
			Expect(w.Len()).To(Equal(2))

			b, ok := w.Body(spawned)
			Expect(ok).To(BeTrue())
			Expect(b.Position()).To(Equal(mgl64.Vec3{5, 5, 0}))
		})
	})

	Describe("Update", func() {
		It("rejects invalid timesteps", func() {
			for _, dt := range []float64{-0.01, math.NaN(), math.Inf(1)} {
				Expect(w.Update(dt)).To(MatchError(world.ErrInvalidTimestep))
			}
		})

		It("accepts a zero timestep without moving anything", func() {
			b := sphere(mgl64.Vec3{1, 4, 2}, mgl64.Vec3{3, 0, 0}, 1, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.Update(0)).To(Succeed())
			Expect(b.Position()).To(Equal(mgl64.Vec3{1, 4, 2}))
		})

		It("leaves a force-free body at rest untouched", func() {
			w.Gravity = mgl64.Vec3{}
			b := sphere(mgl64.Vec3{1, 4, 2}, mgl64.Vec3{}, 2, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 50; i++ {
				Expect(w.Update(0.016)).To(Succeed())
			}
			Expect(b.Position()).To(Equal(mgl64.Vec3{1, 4, 2}))
			Expect(b.Velocity).To(Equal(mgl64.Vec3{}))
		})

		It("pulls bodies down with gravity", func() {
			b := sphere(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{}, 3, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.Update(0.1)).To(Succeed())
			Expect(b.Position().Y()).To(BeNumerically("~", 10-0.0981, 1e-9))
			Expect(b.Velocity.Y()).To(BeNumerically("~", -0.981*0.98, 1e-9))
		})

		It("brings a dropped sphere to rest exactly on the ground", func() {
			b := sphere(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{}, 5, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 1000; i++ {
				Expect(w.Update(0.01)).To(Succeed())
			}
			for i := 0; i < 100; i++ {
				Expect(w.Update(0.01)).To(Succeed())
				Expect(b.Velocity).To(Equal(mgl64.Vec3{}))
				Expect(b.Position().Y()).To(Equal(1.5))
			}
		})

		It("bounces a fast sphere off the ground", func() {
			b := sphere(mgl64.Vec3{0, 1.55, 0}, mgl64.Vec3{0, -10, 0}, 1, 0.5)
			_, err := w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.Update(0.01)).To(Succeed())
			Expect(b.Velocity.Y()).To(BeNumerically(">", 0))
		})

		It("does not increase the overlap of an approaching pair", func() {
			a := sphere(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{1, 0, 0}, 1, 0.5)
			c := sphere(mgl64.Vec3{0.9, 10, 0}, mgl64.Vec3{-1, 0, 0}, 1, 0.5)
			_, err := w.AddObject(a)
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddObject(c)
			Expect(err).NotTo(HaveOccurred())

			before := a.Collider().SpherePenetration(c.Collider())
			Expect(w.Update(0.01)).To(Succeed())
			after := a.Collider().SpherePenetration(c.Collider())

			Expect(after).To(BeNumerically("<=", before))
			Expect(a.Velocity.X()).To(BeNumerically("<", 0))
			Expect(c.Velocity.X()).To(BeNumerically(">", 0))
		})

		It("gives both bodies of a pair the same velocity change regardless of mass", func() {
			w.Gravity = mgl64.Vec3{}
			light := sphere(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{1, 0, 0}, 1, 0.5)
			heavy := sphere(mgl64.Vec3{0.95, 10, 0}, mgl64.Vec3{}, 50, 0.5)
			_, err := w.AddObject(light)
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddObject(heavy)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.Update(0.01)).To(Succeed())

			lightDelta := light.Velocity.X() - 0.98
			heavyDelta := heavy.Velocity.X()
			Expect(heavyDelta).To(BeNumerically(">", 0))
			Expect(lightDelta).To(BeNumerically("~", -heavyDelta, 1e-9))
		})

		It("rests bodies on the static mesh", func() {
			mesh, err := collision.MeshFromIndexed(
				[]mgl64.Vec3{{-5, 3, -5}, {5, 3, -5}, {5, 3, 5}, {-5, 3, 5}},
				[]int{0, 2, 1, 0, 3, 2},
			)
			Expect(err).NotTo(HaveOccurred())
			w.SetMesh(mesh)

			b := sphere(mgl64.Vec3{1, 5, -2}, mgl64.Vec3{}, 1, 0.5)
			_, err = w.AddObject(b)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 1000; i++ {
				Expect(w.Update(0.01)).To(Succeed())
			}
			Expect(b.AtRest()).To(BeTrue())
			Expect(b.Position().Y()).To(BeNumerically("~", 3.5, 1e-9))
		})

		It("reports kinetic energy of all bodies", func() {
			_, err := w.AddObject(sphere(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 0, 0}, 2, 0.5))
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddObject(sphere(mgl64.Vec3{5, 5, 0}, mgl64.Vec3{0, 0, 2}, 1, 0.5))
			Expect(err).NotTo(HaveOccurred())
			Expect(w.KineticEnergy()).To(BeNumerically("~", 3, 1e-12))
		})
	})
})
