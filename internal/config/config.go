package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/derivtutor/expr"
)

type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
		LogLevel     string        `yaml:"log_level"`
	} `yaml:"server"`
	History struct {
		Backend  string `yaml:"backend"` // memory, file or sqlite
		Path     string `yaml:"path"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"history"`
	Plot struct {
		Points int     `yaml:"points"`
		XMin   float64 `yaml:"x_min"`
		XMax   float64 `yaml:"x_max"`
	} `yaml:"plot"`
	Tutor struct {
		Variable string `yaml:"variable"`
		MaxOrder int    `yaml:"max_order"`
	} `yaml:"tutor"`
}

// Default returns a configuration that runs without any file.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.MaxBodyBytes = 1 << 20
	cfg.Server.LogLevel = "info"
	cfg.History.Backend = "memory"
	cfg.History.Capacity = 200
	cfg.Plot.Points = 241
	cfg.Plot.XMin = -6
	cfg.Plot.XMax = 6
	cfg.Tutor.Variable = "x"
	cfg.Tutor.MaxOrder = 10
	return &cfg
}

// Load starts from Default, then applies .env, the YAML file at path and
// DERIVTUTOR_* environment variables, in that order. A missing .env or
// YAML file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DERIVTUTOR_ADDR", &cfg.Server.Addr)
	str("DERIVTUTOR_LOG_LEVEL", &cfg.Server.LogLevel)
	str("DERIVTUTOR_HISTORY_BACKEND", &cfg.History.Backend)
	str("DERIVTUTOR_HISTORY_PATH", &cfg.History.Path)
	str("DERIVTUTOR_VARIABLE", &cfg.Tutor.Variable)
	if err := num("DERIVTUTOR_HISTORY_CAPACITY", &cfg.History.Capacity); err != nil {
		return err
	}
	if err := num("DERIVTUTOR_MAX_ORDER", &cfg.Tutor.MaxOrder); err != nil {
		return err
	}
	return num("DERIVTUTOR_PLOT_POINTS", &cfg.Plot.Points)
}

// Validate reports the first unusable value.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	case c.Server.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalid)
	case c.History.Capacity <= 0:
		return fmt.Errorf("%w: history.capacity must be positive", ErrInvalid)
	case c.Plot.Points < 2:
		return fmt.Errorf("%w: plot.points must be at least 2", ErrInvalid)
	case c.Plot.XMin >= c.Plot.XMax:
		return fmt.Errorf("%w: plot.x_min must be below plot.x_max", ErrInvalid)
	case c.Tutor.MaxOrder < 1:
		return fmt.Errorf("%w: tutor.max_order must be at least 1", ErrInvalid)
	case !expr.IsIdentifier(c.Tutor.Variable):
		return fmt.Errorf("%w: tutor.variable %q is not an identifier", ErrInvalid, c.Tutor.Variable)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: server.log_level %q", ErrInvalid, c.Server.LogLevel)
	}
	switch c.History.Backend {
	case "memory":
	case "file", "sqlite":
		if c.History.Path == "" {
			return fmt.Errorf("%w: history.path is required for the %s backend", ErrInvalid, c.History.Backend)
		}
	default:
		return fmt.Errorf("%w: history.backend %q", ErrInvalid, c.History.Backend)
	}
	return nil
}

// ErrInvalid wraps every Validate failure.
var ErrInvalid = errors.New("config: invalid")
