package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server        Server
	Store         Store
	Cache         Cache
	Sequencer     Sequencer
	Progress      Progress
	Scheduler     Scheduler
	Seed          Seed
	Notifications Notifications
	Log           Log
}

type Server struct {
	Addr            string        `env:"DASHBOARD_ADDR" envDefault:"127.0.0.1:9001"`
	ReadTimeout     time.Duration `env:"DASHBOARD_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"DASHBOARD_WRITE_TIMEOUT" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"DASHBOARD_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type Store struct {
	// Driver is one of memory, sqlite or postgres.
	Driver string `env:"STORE_DRIVER" envDefault:"memory"`
	DSN    string `env:"STORE_DSN"`
}

type Cache struct {
	// TTL of zero keeps entries until the next mutation invalidates them.
	TTL time.Duration `env:"CACHE_TTL" envDefault:"0s"`
}

type Sequencer struct {
	MaxCharDelay time.Duration `env:"SEQUENCER_MAX_CHAR_DELAY" envDefault:"10ms"`
}

type Progress struct {
	Interval time.Duration `env:"PROGRESS_INTERVAL" envDefault:"1s"`
	Step     int           `env:"PROGRESS_STEP" envDefault:"5"`
	Ceiling  int           `env:"PROGRESS_CEILING" envDefault:"100"`
}

type Scheduler struct {
	// Cron is empty when scheduled scans should only be started by hand.
	Cron string `env:"SCHEDULER_CRON"`
}

type Seed struct {
	Enabled bool   `env:"SEED_ENABLED" envDefault:"true"`
	File    string `env:"SEED_FILE"`
}

type Notifications struct {
	Capacity int `env:"NOTIFICATIONS_CAPACITY" envDefault:"50"`
}

type Log struct {
	DevMode bool `env:"LOG_DEV_MODE" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN must be set for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Progress.Step <= 0 || c.Progress.Ceiling <= 0 {
		return fmt.Errorf("progress step and ceiling must be positive")
	}
	if c.Progress.Interval <= 0 {
		return fmt.Errorf("PROGRESS_INTERVAL must be positive")
	}
	if c.Sequencer.MaxCharDelay < 0 {
		return fmt.Errorf("SEQUENCER_MAX_CHAR_DELAY must not be negative")
	}
	return nil
}
