package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	NumFloors         = 10
	NumPassengers     = 20
	NumElevators      = 4
	TripsPerPassenger = 3
	TravelDuration    = 2 * time.Millisecond
	DoorOpenDuration  = 1 * time.Millisecond
	EnterDuration     = 1 * time.Millisecond
	WatchdogTimeout   = 30 * time.Second
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes one simulation run. Zero durations mean "no delay".
type Config struct {
	Floors            int           `yaml:"floors"`
	Passengers        int           `yaml:"passengers"`
	Elevators         int           `yaml:"elevators"`
	TripsPerPassenger int           `yaml:"trips_per_passenger"`
	Seed              uint64        `yaml:"seed"`
	TravelDuration    time.Duration `yaml:"travel_duration"`
	DoorOpenDuration  time.Duration `yaml:"door_open_duration"`
	EnterDuration     time.Duration `yaml:"enter_duration"`
	WatchdogTimeout   time.Duration `yaml:"watchdog_timeout"`
}

func Default() Config {
	return Config{
		Floors:            NumFloors,
		Passengers:        NumPassengers,
		Elevators:         NumElevators,
		TripsPerPassenger: TripsPerPassenger,
		Seed:              1,
		TravelDuration:    TravelDuration,
		DoorOpenDuration:  DoorOpenDuration,
		EnterDuration:     EnterDuration,
		WatchdogTimeout:   WatchdogTimeout,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

var envKeys = map[string]func(cfg *Config, v int){
	"LIFTSYNC_FLOORS":     func(cfg *Config, v int) { cfg.Floors = v },
	"LIFTSYNC_PASSENGERS": func(cfg *Config, v int) { cfg.Passengers = v },
	"LIFTSYNC_ELEVATORS":  func(cfg *Config, v int) { cfg.Elevators = v },
	"LIFTSYNC_TRIPS":      func(cfg *Config, v int) { cfg.TripsPerPassenger = v },
	"LIFTSYNC_SEED":       func(cfg *Config, v int) { cfg.Seed = uint64(v) },
}

// ApplyEnv overrides fields from a .env file. A missing file leaves cfg untouched.
func ApplyEnv(cfg Config, envPath string) (Config, error) {
	if envPath == "" {
		return cfg, nil
	}
	envFile, err := godotenv.Read(envPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read env file %s: %w", envPath, err)
	}
	for key, set := range envKeys {
		raw, ok := envFile[key]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return cfg, fmt.Errorf("%w: %s=%q is not a non-negative integer", ErrInvalidConfig, key, raw)
		}
		set(&cfg, v)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Floors < 2:
		return fmt.Errorf("%w: need at least 2 floors, got %d", ErrInvalidConfig, cfg.Floors)
	case cfg.Passengers < 1:
		return fmt.Errorf("%w: need at least 1 passenger, got %d", ErrInvalidConfig, cfg.Passengers)
	case cfg.Elevators < 1:
		return fmt.Errorf("%w: need at least 1 elevator, got %d", ErrInvalidConfig, cfg.Elevators)
	case cfg.TripsPerPassenger < 1:
		return fmt.Errorf("%w: need at least 1 trip per passenger, got %d", ErrInvalidConfig, cfg.TripsPerPassenger)
	case cfg.TravelDuration < 0 || cfg.DoorOpenDuration < 0 || cfg.EnterDuration < 0 || cfg.WatchdogTimeout < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}

// TotalTrips is the starting value of the shared trip counter.
func (cfg Config) TotalTrips() int {
	return cfg.Passengers * cfg.TripsPerPassenger
}
