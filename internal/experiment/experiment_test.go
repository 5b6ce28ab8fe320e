package experiment_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rklab/internal/dynamo"
	"github.com/san-kum/rklab/internal/experiment"
	"github.com/san-kum/rklab/internal/problems"
)

var _ = Describe("Registry", func() {
	var registry *experiment.Registry

	BeforeEach(func() {
		registry = experiment.NewRegistry()
	})

	It("resolves methods and their aliases", func() {
		m, err := registry.GetMethod("rk2")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("midpoint"))
		Expect(m.Label).To(Equal("RK2"))

		m, err = registry.GetMethod("rk45")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Style).To(Equal("rs"))
	})

	It("rejects unknown methods", func() {
		_, err := registry.GetMethod("rk4")
		Expect(err).To(MatchError(ContainSubstring("unknown method")))
	})

	It("lists methods in a stable order", func() {
		Expect(registry.ListMethods()).To(Equal([]string{"euler", "midpoint", "reference"}))
	})
})

var _ = Describe("Experiment", func() {
	run := func(cfg experiment.Config) (*experiment.Result, error) {
		return experiment.New(cfg, nil).Run(context.Background())
	}

	defaults := func(name string) experiment.Config {
		p, err := problems.Lookup(name)
		Expect(err).NotTo(HaveOccurred())
		return experiment.DefaultConfig(p)
	}

	Context("on the harmonic oscillator", func() {
		var result *experiment.Result

		BeforeEach(func() {
			var err error
			result, err = run(defaults("harmonic"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("compares against the exact solution", func() {
			Expect(result.BaselineKind).To(Equal(experiment.BaselineExact))
			Expect(result.Baseline).To(HaveLen(11))
			Expect(result.Baseline[10]).To(BeNumerically("~", math.Sin(10), 1e-15))
		})

		It("keeps the method order of the configuration", func() {
			Expect(result.Series).To(HaveLen(3))
			Expect(result.Series[0].Method.Name).To(Equal("euler"))
			Expect(result.Series[1].Method.Name).To(Equal("midpoint"))
			Expect(result.Series[2].Method.Name).To(Equal("reference"))
		})

		It("ranks the methods by accuracy", func() {
			euler, _ := result.Get("euler")
			mid, _ := result.Get("midpoint")
			ref, _ := result.Get("reference")

			Expect(euler.Errors.Final).To(BeNumerically(">", 1.0))
			Expect(mid.Errors.Final).To(BeNumerically("<", euler.Errors.Final))
			Expect(ref.Errors.MaxAbs).To(BeNumerically("<", 1e-6))
			Expect(ref.IsBaseline).To(BeFalse())
		})

		It("reports energy drift for the conservative system", func() {
			euler, _ := result.Get("euler")
			ref, _ := result.Get("reference")

			Expect(euler.EnergyDrift).To(BeNumerically(">", 1.0))
			Expect(ref.EnergyDrift).To(BeNumerically("<", 1e-6))
		})

		It("returns trajectories shaped state dimension by grid points", func() {
			for _, s := range result.Series {
				n, points := s.Trajectory.Dims()
				Expect(n).To(Equal(2))
				Expect(points).To(Equal(11))
			}
		})
	})

	Context("on a problem without a closed form", func() {
		It("falls back to the reference baseline", func() {
			result, err := run(defaults("pendulum"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.BaselineKind).To(Equal(experiment.BaselineReference))

			ref, ok := result.Get("reference")
			Expect(ok).To(BeTrue())
			Expect(ref.IsBaseline).To(BeTrue())
			Expect(math.IsNaN(ref.Errors.MaxAbs)).To(BeTrue())
			Expect(math.IsNaN(ref.Errors.Final)).To(BeTrue())

			euler, _ := result.Get("euler")
			Expect(euler.IsBaseline).To(BeFalse())
			Expect(euler.Errors.MaxAbs).To(BeNumerically(">", 0))
		})

		It("leaves energy drift undefined for damped systems", func() {
			result, err := run(defaults("damped_pendulum"))
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(result.Series[0].EnergyDrift)).To(BeTrue())
		})
	})

	It("drops the exact solution when the initial state is overridden", func() {
		cfg := defaults("harmonic")
		cfg.InitState = []float64{1, 0}

		result, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.BaselineKind).To(Equal(experiment.BaselineReference))
		Expect(result.Baseline[0]).To(Equal(1.0))
	})

	It("takes a single step when no grid is requested", func() {
		cfg := defaults("damped")
		cfg.Points = 0

		result, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Times).To(Equal([]float64{0, 10}))
		for _, s := range result.Series {
			_, points := s.Trajectory.Dims()
			Expect(points).To(Equal(2))
		}
	})

	DescribeTable("rejects invalid configurations",
		func(mutate func(*experiment.Config), target error) {
			cfg := defaults("harmonic")
			mutate(&cfg)

			result, err := run(cfg)
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
			if target != nil {
				Expect(errors.Is(err, target)).To(BeTrue(), err.Error())
			}
		},
		Entry("unknown problem", func(c *experiment.Config) { c.Problem = "lorenz" }, nil),
		Entry("unknown method", func(c *experiment.Config) { c.Methods = []string{"verlet"} }, nil),
		Entry("no methods", func(c *experiment.Config) { c.Methods = nil }, nil),
		Entry("reversed span", func(c *experiment.Config) { c.T0, c.Tf = 10, 0 }, dynamo.ErrInvalidSpan),
		Entry("negative points", func(c *experiment.Config) { c.Points = -1 }, dynamo.ErrInvalidGrid),
		Entry("wrong state size", func(c *experiment.Config) { c.InitState = []float64{1} }, dynamo.ErrDimensionMismatch),
	)

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := experiment.New(defaults("harmonic"), nil).Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
