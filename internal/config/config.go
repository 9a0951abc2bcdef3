// Package config loads parksim settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/world"
)

// DefaultPath is where the binary looks for its config file.
const DefaultPath = "parksim.yaml"

// Environment overrides.
const (
	EnvAdminKey = "PARKSIM_ADMIN_KEY"
	EnvDB       = "PARKSIM_DB"
	EnvPort     = "PARKSIM_PORT"
)

// Config is the complete runtime configuration.
type Config struct {
	Seed         int64         `yaml:"seed"` // 0 picks a random seed at startup
	Debug        bool          `yaml:"debug"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Speed        float64       `yaml:"speed"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Layout   LayoutConfig   `yaml:"layout"`
	Rules    RulesConfig    `yaml:"rules"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	AdminKey    string   `yaml:"admin_key"`
	CORSOrigins []string `yaml:"cors_origins"`
	BuildRate   int      `yaml:"build_rate"` // Build requests per IP per minute
}

// DatabaseConfig configures snapshot persistence.
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	SnapshotEvery int    `yaml:"snapshot_every"` // Game days between automatic snapshots
}

// LayoutConfig controls the procedural starter paths of a fresh park.
type LayoutConfig struct {
	Generate  bool    `yaml:"generate"`
	MaxPaths  int     `yaml:"max_paths"`
	Threshold float64 `yaml:"threshold"`
}

// RulesConfig is the YAML form of park.Rules.
type RulesConfig struct {
	Rating        park.RatingMode      `yaml:"rating"`
	Breakdown     park.BreakdownPolicy `yaml:"breakdown"`
	MinEntryFee   int64                `yaml:"min_entry_fee"`
	MaxEntryFee   int64                `yaml:"max_entry_fee"`
	PopulationCap int                  `yaml:"population_cap"`
	Missions      []park.Mission       `yaml:"missions"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	rules := park.DefaultRules()
	layout := world.DefaultLayoutConfig()
	return Config{
		TickInterval: time.Second,
		Speed:        1,
		Server: ServerConfig{
			Port:      8080,
			BuildRate: 60,
		},
		Database: DatabaseConfig{
			Path:          "data/parksim.db",
			SnapshotEvery: 1,
		},
		Layout: LayoutConfig{
			MaxPaths:  layout.MaxPaths,
			Threshold: layout.Threshold,
		},
		Rules: RulesConfig{
			Rating:        rules.Rating.Mode,
			Breakdown:     rules.Breakdown,
			MinEntryFee:   rules.MinEntryFee,
			MaxEntryFee:   rules.MaxEntryFee,
			PopulationCap: rules.PopulationCap,
			Missions:      rules.Missions,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAdminKey); v != "" {
		c.Server.AdminKey = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate reports every invalid setting, joined.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed must not be negative, got %g", c.Speed))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.BuildRate <= 0 {
		errs = append(errs, errors.New("server.build_rate must be positive"))
	}
	if c.Layout.MaxPaths < 0 {
		errs = append(errs, errors.New("layout.max_paths must not be negative"))
	}

	r := c.Rules
	switch r.Rating {
	case park.RatingSimple, park.RatingExtended:
	default:
		errs = append(errs, fmt.Errorf("rules.rating: unknown mode %q", r.Rating))
	}
	switch r.Breakdown {
	case park.BreakdownCapOne, park.BreakdownIndependent:
	default:
		errs = append(errs, fmt.Errorf("rules.breakdown: unknown policy %q", r.Breakdown))
	}
	if r.MinEntryFee < 0 || r.MinEntryFee > r.MaxEntryFee {
		errs = append(errs, fmt.Errorf("rules: entry fee bounds [%d, %d] invalid", r.MinEntryFee, r.MaxEntryFee))
	}
	if r.PopulationCap < 0 {
		errs = append(errs, errors.New("rules.population_cap must not be negative"))
	}
	for i, m := range r.Missions {
		switch m.Metric {
		case park.MetricMaxVisitors, park.MetricMoney, park.MetricRating:
		default:
			errs = append(errs, fmt.Errorf("rules.missions[%d]: unknown metric %q", i, m.Metric))
		}
		if m.RewardUnlock != "" {
			if _, ok := catalog.Lookup(m.RewardUnlock); !ok {
				errs = append(errs, fmt.Errorf("rules.missions[%d]: unknown unlock %q", i, m.RewardUnlock))
			}
		}
	}
	return errors.Join(errs...)
}

// ParkRules converts the rules section to park.Rules.
func (c Config) ParkRules() park.Rules {
	rating := park.SimpleRating()
	if c.Rules.Rating == park.RatingExtended {
		rating = park.ExtendedRating()
	}
	return park.Rules{
		Rating:        rating,
		Breakdown:     c.Rules.Breakdown,
		MinEntryFee:   c.Rules.MinEntryFee,
		MaxEntryFee:   c.Rules.MaxEntryFee,
		PopulationCap: c.Rules.PopulationCap,
		Missions:      append([]park.Mission(nil), c.Rules.Missions...),
	}
}

// WorldLayout converts the layout section for world.GenerateLayout.
func (c Config) WorldLayout(seed int64) world.LayoutConfig {
	return world.LayoutConfig{
		Seed:      seed,
		MaxPaths:  c.Layout.MaxPaths,
		Threshold: c.Layout.Threshold,
	}
}
