package evo_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/san-kum/evoimg/internal/evo"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Evo Suite")
}

func scenarioConfig() evo.Config {
	cfg := evo.DefaultConfig()
	cfg.PopulationSize = 10
	cfg.CheckpointInterval = 0
	return cfg
}

var _ = Describe("Engine", func() {
	var (
		cfg    evo.Config
		target evo.Grid
		rng    *rand.Rand
	)

	BeforeEach(func() {
		cfg = scenarioConfig()
		target = evo.NewGrid(cfg.GridSize())
		rng = rand.New(rand.NewSource(GinkgoRandomSeed()))
	})

	Context("with zero mutation and crossover rates", func() {
		BeforeEach(func() {
			cfg.MutationRate = 0
			cfg.CrossoverRate = 0
			cfg.MaxGenerations = 1
			cfg.TargetFitness = 1.0
		})

		It("keeps the initial best fitness after one generation", func() {
			eng, err := evo.New(cfg, target, rng)
			Expect(err).NotTo(HaveOccurred())

			initialBest := 0.0
			for _, c := range eng.Population() {
				probe := c.Clone()
				Expect(probe.Evaluate(target)).To(Succeed())
				if probe.Fitness > initialBest {
					initialBest = probe.Fitness
				}
			}

			res, err := eng.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Generations).To(Equal(1))
			Expect(res.BestFitness).To(Equal(initialBest))
		})

		It("only ever clones existing members", func() {
			eng, err := evo.New(cfg, target, rng)
			Expect(err).NotTo(HaveOccurred())

			originals := make([]evo.Grid, 0, cfg.PopulationSize)
			for _, c := range eng.Population() {
				originals = append(originals, c.Pixels.Clone())
			}

			_, err = eng.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			for _, c := range eng.Population() {
				matched := false
				for _, o := range originals {
					if c.Pixels.Equal(o) {
						matched = true
						break
					}
				}
				Expect(matched).To(BeTrue())
			}
		})
	})

	Context("when a candidate already matches the target", func() {
		It("scores it 1.0 and stops at generation 0", func() {
			cfg.MaxGenerations = 100
			cfg.TargetFitness = 1.0
			eng, err := evo.New(cfg, target, rng)
			Expect(err).NotTo(HaveOccurred())

			perfect := eng.Population()[cfg.PopulationSize-1]
			copy(perfect.Pixels, target)
			Expect(perfect.Evaluate(target)).To(Succeed())
			Expect(perfect.Fitness).To(Equal(1.0))

			res, err := eng.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Generations).To(BeZero())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Best.Pixels.Equal(target)).To(BeTrue())
		})
	})

	Context("with a zero generation cap", func() {
		It("evaluates once and never advances", func() {
			cfg.MaxGenerations = 0
			cfg.TargetFitness = 1.0
			eng, err := evo.New(cfg, target, rng)
			Expect(err).NotTo(HaveOccurred())

			evaluations := 0
			eng.AddObserver(evo.ObserverFunc(func(evo.GenerationStats) { evaluations++ }))

			res, err := eng.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(evaluations).To(Equal(1))
			Expect(res.Generations).To(BeZero())
			Expect(eng.Generation()).To(BeZero())
			Expect(res.History).To(HaveLen(1))
		})
	})

	Context("with the reference configuration", func() {
		It("never lets the best fitness decrease", func() {
			cfg.PopulationSize = 30
			cfg.MaxGenerations = 60
			cfg.TargetFitness = 1.0
			eng, err := evo.New(cfg, target, rng)
			Expect(err).NotTo(HaveOccurred())

			res, err := eng.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			for i := 1; i < len(res.History); i++ {
				Expect(res.History[i].Best).To(BeNumerically(">=", res.History[i-1].Best))
			}
			Expect(res.BestFitness).To(BeNumerically(">", res.History[0].Best))
		})
	})
})
