package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayFoodTrail OverlayID = "food_trail"
	OverlayHomeTrail OverlayID = "home_trail"
	OverlayFood      OverlayID = "food"
	OverlayObstacles OverlayID = "obstacles"
	OverlayGrid      OverlayID = "grid"
	OverlayPerf      OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display (e.g., "T")
	Category    string // Grouping (e.g., "field", "debug")
	Exclusive   []OverlayID
	Default     bool // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Pheromone fields
	r.Register(OverlayDescriptor{
		ID:          OverlayFoodTrail,
		Name:        "Food Trail",
		Description: "Shared food pheromone heatmap",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "field",
		Exclusive:   []OverlayID{OverlayHomeTrail},
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayHomeTrail,
		Name:        "Home Trail",
		Description: "Private home trail of the first ant in the hovered cell",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "field",
		Exclusive:   []OverlayID{OverlayFoodTrail},
	})

	// Lattice layers
	r.Register(OverlayDescriptor{
		ID:       OverlayFood,
		Name:     "Food",
		Key:      rl.KeyF,
		KeyLabel: "F",
		Category: "layer",
		Default:  true,
	})

	r.Register(OverlayDescriptor{
		ID:       OverlayObstacles,
		Name:     "Obstacles",
		Key:      rl.KeyO,
		KeyLabel: "O",
		Category: "layer",
		Default:  true,
	})

	r.Register(OverlayDescriptor{
		ID:       OverlayGrid,
		Name:     "Grid Lines",
		Key:      rl.KeyG,
		KeyLabel: "G",
		Category: "layer",
	})

	// Debug
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Per-phase tick timing",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID, its new state and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
