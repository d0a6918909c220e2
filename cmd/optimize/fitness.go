package main

import (
	"log/slog"
	"math"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/colony/colony"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu         sync.Mutex
	lastActive float64 // mean active percent from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastActive returns the mean active percent of the most recent evaluation.
func (fe *FitnessEvaluator) LastActive() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastActive
}

// runResult holds the results from a single simulation run.
type runResult struct {
	deliveredFraction float64
	windowStats       []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// negated delivered fraction averaged over all seeds. Invalid parameter
// sets score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	fractions := make([]float64, 0, len(results))
	var active []float64
	for _, r := range results {
		if r == nil {
			return math.Inf(1)
		}
		fractions = append(fractions, r.deliveredFraction)
		for _, ws := range r.windowStats {
			active = append(active, ws.ActivePercent)
		}
	}

	fe.mu.Lock()
	if len(active) > 0 {
		fe.lastActive = stat.Mean(active, nil)
	}
	fe.mu.Unlock()

	return -stat.Mean(fractions, nil)
}

// runSimulation executes a single headless run to maxTicks. It returns nil
// if the parameters do not produce a valid simulation.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	cfg.Seed = strconv.FormatInt(seed, 10)
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "error", err)
		return nil
	}

	result := &runResult{}
	sim, err := colony.New(colony.Options{
		Config: cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		slog.Warn("simulation setup failed", "seed", seed, "error", err)
		return nil
	}
	defer sim.Close()

	for sim.Tick() < fe.maxTicks {
		sim.Step()
	}
	result.deliveredFraction = sim.Metrics().DeliveredFraction
	return result
}
