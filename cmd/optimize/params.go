package main

import (
	"fmt"

	"github.com/pthm-cable/colony/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters: the
// activation gain, the four couplings and the spontaneous activation rate.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "gain", Path: "activation.gain", Min: 0.01, Max: 1.5, Default: 0.05},
			{Name: "j11", Path: "activation.j11", Min: -1, Max: 1, Default: 1},
			{Name: "j12", Path: "activation.j12", Min: -1, Max: 1, Default: 0},
			{Name: "j21", Path: "activation.j21", Min: -1, Max: 1, Default: 0},
			{Name: "j22", Path: "activation.j22", Min: -1, Max: 1, Default: 0},
			{Name: "spontaneous_prob", Path: "activation.spontaneous_prob", Min: 0, Max: 0.1, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	a := &cfg.Activation
	for i, spec := range pv.Specs {
		v := clamped[i]
		switch spec.Path {
		case "activation.gain":
			a.Gain = v
		case "activation.j11":
			a.J11 = v
		case "activation.j12":
			a.J12 = v
		case "activation.j21":
			a.J21 = v
		case "activation.j22":
			a.J22 = v
		case "activation.spontaneous_prob":
			a.SpontaneousProb = v
		default:
			return fmt.Errorf("unknown parameter path %q", spec.Path)
		}
	}
	return cfg.Finalize()
}
