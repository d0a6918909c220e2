// Package config provides configuration loading and access for the colony simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// PheromoneDT is the fixed integration step of the food-trail update.
const PheromoneDT = 0.1

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Colony     ColonyConfig     `yaml:"colony"`
	Activation ActivationConfig `yaml:"activation"`
	Pheromone  PheromoneConfig  `yaml:"pheromone"`
	Food       FoodConfig       `yaml:"food"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Seed       string           `yaml:"seed"` // Parsed as int64; anything else means unseeded
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds lattice dimensions.
type GridConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	NestRadius int `yaml:"nest_radius"` // Food-free zone around the nest
}

// ColonyConfig holds the starting population.
type ColonyConfig struct {
	InitialAnts int `yaml:"initial_ants"`
}

// ActivationConfig holds the MCA activation parameters.
// The J coefficients are indexed (self state, neighbor state).
type ActivationConfig struct {
	Gain             float64 `yaml:"gain"`
	J11              float64 `yaml:"j11"` // active self, active neighbor
	J12              float64 `yaml:"j12"` // active self, inactive neighbor
	J21              float64 `yaml:"j21"` // inactive self, active neighbor
	J22              float64 `yaml:"j22"` // inactive self, inactive neighbor
	SpontaneousProb  float64 `yaml:"spontaneous_prob"`
	SpontaneousLevel float64 `yaml:"spontaneous_level"`
	PaperFaithful    bool    `yaml:"paper_faithful"` // tanh(I + S) instead of tanh(I + g*S)
}

// PheromoneConfig holds food-trail and home-trail parameters.
type PheromoneConfig struct {
	DecayRate      float64 `yaml:"decay_rate"`
	DiffusionRate  float64 `yaml:"diffusion_rate"`
	Deposit        float64 `yaml:"deposit"` // Peak food-trail drop of a carrying ant
	Sigma          float64 `yaml:"sigma"`   // Width of the drop falloff around the food source
	Ceiling        float64 `yaml:"ceiling"`
	TrailThreshold float64 `yaml:"trail_threshold"` // 3x3 mean above which foraging follows the trail
	HomeDeposit    float64 `yaml:"home_deposit"`
	HomeDecay      float64 `yaml:"home_decay"` // Multiplicative factor per tick
}

// FoodConfig holds food scattering and regrowth parameters.
type FoodConfig struct {
	Patches     int  `yaml:"patches"`
	PerPatch    int  `yaml:"per_patch"`
	Infinite    bool `yaml:"infinite"`
	RegrowTicks int  `yaml:"regrow_ticks"`
	MinRadius   int  `yaml:"min_radius"`
	MaxRadius   int  `yaml:"max_radius"`
}

// LifecycleConfig holds birth and starvation parameters.
type LifecycleConfig struct {
	Starvation          bool    `yaml:"starvation"`
	HungerThreshold     float64 `yaml:"hunger_threshold"`
	HungerIncrement     float64 `yaml:"hunger_increment"`
	LowActivityFraction float64 `yaml:"low_activity_fraction"` // Below this active fraction births use the high probability
	BirthProbHigh       float64 `yaml:"birth_prob_high"`
	BirthProbLow        float64 `yaml:"birth_prob_low"`
	MaxAnts             int     `yaml:"max_ants"` // 0 = unlimited
}

// ScenarioConfig selects the obstacle template.
type ScenarioConfig struct {
	Obstacles string `yaml:"obstacles"` // none, rock, tunnel
}

// ScreenConfig holds viewer settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
	CellSize  int `yaml:"cell_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow    int  `yaml:"stats_window"` // Ticks per stats window
	AgentSnapshots bool `yaml:"agent_snapshots"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HungerThreshold float64 // +Inf when starvation is disabled
	Seed            int64
	Seeded          bool // false when Seed was empty or not an integer
	NestX, NestY    int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize recomputes derived values and validates the configuration.
// Call it again after editing fields programmatically.
func (c *Config) Finalize() error {
	c.computeDerived()
	return c.Validate()
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.HungerThreshold = math.Inf(1)
	if c.Lifecycle.Starvation {
		c.Derived.HungerThreshold = c.Lifecycle.HungerThreshold
	}

	c.Derived.Seed, c.Derived.Seeded = 0, false
	if s := strings.TrimSpace(c.Seed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			slog.Warn("invalid seed, using unseeded source", "seed", c.Seed, "error", err)
		} else {
			c.Derived.Seed, c.Derived.Seeded = seed, true
		}
	}

	c.Derived.NestX = c.Grid.Width / 2
	c.Derived.NestY = c.Grid.Height / 2
}

// Validate checks parameter ranges. All failures are reported together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Grid.Width > 0 && c.Grid.Height > 0, "grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height)
	check(c.Grid.NestRadius >= 0, "grid.nest_radius must be >= 0")
	check(c.Colony.InitialAnts >= 0, "colony.initial_ants must be >= 0")

	a := c.Activation
	check(a.SpontaneousProb >= 0 && a.SpontaneousProb <= 1, "activation.spontaneous_prob must be in [0,1], got %v", a.SpontaneousProb)
	check(a.SpontaneousLevel > 0 && a.SpontaneousLevel <= 1, "activation.spontaneous_level must be in (0,1]")

	p := c.Pheromone
	check(p.DecayRate >= 0, "pheromone.decay_rate must be >= 0")
	check(p.DiffusionRate >= 0, "pheromone.diffusion_rate must be >= 0")
	check(4*p.DiffusionRate*PheromoneDT+p.DecayRate*PheromoneDT <= 1,
		"pheromone update unstable: 4*diffusion*dt + decay*dt must be <= 1 (dt=%v)", PheromoneDT)
	check(p.Deposit >= 0 && p.HomeDeposit >= 0, "pheromone deposits must be >= 0")
	check(p.Sigma > 0, "pheromone.sigma must be > 0")
	check(p.Ceiling > 0, "pheromone.ceiling must be > 0")
	check(p.HomeDecay >= 0 && p.HomeDecay <= 1, "pheromone.home_decay must be in [0,1]")

	f := c.Food
	check(f.Patches >= 0 && f.PerPatch >= 0, "food patches and per_patch must be >= 0")
	check(f.RegrowTicks > 0, "food.regrow_ticks must be > 0")
	check(f.MinRadius >= 0 && f.MaxRadius >= f.MinRadius, "food radius range [%d,%d] is empty", f.MinRadius, f.MaxRadius)

	l := c.Lifecycle
	check(!l.Starvation || l.HungerThreshold > 0, "lifecycle.hunger_threshold must be > 0 when starvation is enabled")
	check(l.HungerIncrement >= 0, "lifecycle.hunger_increment must be >= 0")
	check(l.BirthProbHigh >= 0 && l.BirthProbHigh <= 1, "lifecycle.birth_prob_high must be in [0,1]")
	check(l.BirthProbLow >= 0 && l.BirthProbLow <= 1, "lifecycle.birth_prob_low must be in [0,1]")
	check(l.MaxAnts >= 0, "lifecycle.max_ants must be >= 0")

	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window must be > 0")

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
