package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const (
	PolicyLRUK  = "lru-k"
	PolicyClock = "clock"
)

var ErrInvalidConfig = errors.New("config: invalid")

type ReplacerConfig struct {
	Policy   string `mapstructure:"policy"`
	Capacity int    `mapstructure:"capacity"`
	K        int    `mapstructure:"k"`
}

type LruKConfig struct {
	AppName string `mapstructure:"app_name"`

	Replacer ReplacerConfig `mapstructure:"replacer"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	Sim struct {
		Trace       string `mapstructure:"trace"`
		Compression string `mapstructure:"compression"`
		PinWindow   int    `mapstructure:"pin_window"`
		Baseline    bool   `mapstructure:"baseline"`
	} `mapstructure:"sim"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "lruk")
	v.SetDefault("replacer.policy", PolicyLRUK)
	v.SetDefault("replacer.capacity", 64)
	v.SetDefault("replacer.k", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9108")
	v.SetDefault("sim.compression", "auto")
	v.SetDefault("sim.pin_window", 0)
	v.SetDefault("sim.baseline", false)
}

// LoadConfig reads a YAML file. An empty path yields the defaults. Any key can
// be overridden from the environment, e.g. LRUK_REPLACER_K=3.
func LoadConfig(path string) (*LruKConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("lruk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg LruKConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *LruKConfig) Validate() error {
	switch c.Replacer.Policy {
	case PolicyLRUK, PolicyClock:
	default:
		return fmt.Errorf("%w: replacer.policy %q", ErrInvalidConfig, c.Replacer.Policy)
	}
	if c.Replacer.Capacity <= 0 {
		return fmt.Errorf("%w: replacer.capacity must be > 0, got %d", ErrInvalidConfig, c.Replacer.Capacity)
	}
	if c.Replacer.K <= 0 {
		return fmt.Errorf("%w: replacer.k must be > 0, got %d", ErrInvalidConfig, c.Replacer.K)
	}
	if c.Sim.PinWindow < 0 {
		return fmt.Errorf("%w: sim.pin_window must be >= 0", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, s)
	}
	return lvl, nil
}
