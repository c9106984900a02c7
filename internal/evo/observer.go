package evo

import (
	"time"

	"github.com/charmbracelet/log"
)

// GenerationStats summarises a ranked population.
type GenerationStats struct {
	Generation int
	Best       float64
	Mean       float64
	Worst      float64
	Elapsed    time.Duration
}

// Observer is notified after every evaluate+rank.
type Observer interface {
	OnGeneration(stats GenerationStats)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(stats GenerationStats)

func (f ObserverFunc) OnGeneration(stats GenerationStats) { f(stats) }

// ProgressLogger logs the best fitness at generation 0 and every Interval
// generations after that.
type ProgressLogger struct {
	Logger   *log.Logger
	Interval int
}

func (p *ProgressLogger) OnGeneration(s GenerationStats) {
	if p.Logger == nil {
		return
	}
	if s.Generation != 0 && (p.Interval <= 0 || s.Generation%p.Interval != 0) {
		return
	}
	p.Logger.Info("generation",
		"n", s.Generation,
		"best", formatFitness(s.Best),
		"mean", formatFitness(s.Mean),
	)
}
