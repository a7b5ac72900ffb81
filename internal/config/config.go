// Package config loads dashboard configuration from config.yaml and
// DASHBOARD_* environment variables and builds the global logger.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/fetcher"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Sources  feature.Sources `yaml:"sources" mapstructure:"sources"`
	Fetch    FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Viewport ViewportConfig  `yaml:"viewport" mapstructure:"viewport"`
	Server   ServerConfig    `yaml:"server" mapstructure:"server"`
	Log      LogConfig       `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts         int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	UserAgent           string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec          float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TempDir             string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	LoadTimeoutSecs     int     `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs"`
	BreakerFailures     int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCooldownSecs int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// ViewportConfig sizes the headless map canvas and the tooltip box.
type ViewportConfig struct {
	Width         float64 `yaml:"width" mapstructure:"width"`
	Height        float64 `yaml:"height" mapstructure:"height"`
	TooltipWidth  float64 `yaml:"tooltip_width" mapstructure:"tooltip_width"`
	TooltipHeight float64 `yaml:"tooltip_height" mapstructure:"tooltip_height"`
	TooltipOffset float64 `yaml:"tooltip_offset" mapstructure:"tooltip_offset"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxSessions    int      `yaml:"max_sessions" mapstructure:"max_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetcherOptions converts the fetch settings into fetcher options.
func (c FetchConfig) FetcherOptions() fetcher.Options {
	timeout := time.Duration(c.TimeoutSecs) * time.Second
	return fetcher.Options{
		HTTP: fetcher.HTTPOptions{
			UserAgent:   c.UserAgent,
			Timeout:     timeout,
			MaxAttempts: c.MaxAttempts,
			RateLimit:   rate.Limit(c.RatePerSec),
			Breaker: resilience.BreakerConfig{
				Failures: c.BreakerFailures,
				Cooldown: time.Duration(c.BreakerCooldownSecs) * time.Second,
			},
		},
		FTP: fetcher.FTPOptions{Timeout: timeout},
	}
}

// Size returns the canvas size.
func (c ViewportConfig) Size() projector.Size {
	return projector.Size{Width: c.Width, Height: c.Height}
}

// TooltipLayout returns the tooltip box and pointer offset.
func (c ViewportConfig) TooltipLayout() projector.TooltipLayout {
	return projector.TooltipLayout{
		Box:    projector.Size{Width: c.TooltipWidth, Height: c.TooltipHeight},
		Offset: c.TooltipOffset,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.tracts.url", "data/tracts.geojson")
	v.SetDefault("sources.zones.url", "data/mha_zones.geojson")
	v.SetDefault("sources.burden.url", "data/burden.csv")
	v.SetDefault("sources.income.url", "data/income.csv")
	v.SetDefault("sources.tracts.format", "")
	v.SetDefault("sources.zones.format", "")
	v.SetDefault("sources.burden.format", "")
	v.SetDefault("sources.income.format", "")
	for _, name := range []string{"tracts", "zones", "burden", "income"} {
		v.SetDefault("sources."+name+".table", "")
		v.SetDefault("sources."+name+".sheet", "")
	}
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.user_agent", "housing-dashboard/1.0")
	v.SetDefault("fetch.rate_per_sec", 10)
	v.SetDefault("fetch.temp_dir", "")
	v.SetDefault("fetch.load_timeout_secs", 120)
	v.SetDefault("fetch.breaker_failures", 5)
	v.SetDefault("fetch.breaker_cooldown_secs", 30)
	v.SetDefault("viewport.width", 1024)
	v.SetDefault("viewport.height", 768)
	v.SetDefault("viewport.tooltip_width", 220)
	v.SetDefault("viewport.tooltip_height", 96)
	v.SetDefault("viewport.tooltip_offset", 12)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Modes: "load" for
// commands that only read the datasets, "serve" for the HTTP API.
func (c *Config) Validate(mode string) error {
	var problems []string
	switch mode {
	case "load":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Server.MaxSessions < 1 {
			problems = append(problems, "server.max_sessions must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	for name, src := range map[string]feature.Source{
		"tracts": c.Sources.Tracts,
		"zones":  c.Sources.Zones,
		"burden": c.Sources.Burden,
		"income": c.Sources.Income,
	} {
		if src.URL == "" {
			problems = append(problems, fmt.Sprintf("sources.%s.url is required", name))
			continue
		}
		if _, err := src.ResolveFormat(); err != nil {
			problems = append(problems, fmt.Sprintf("sources.%s: %v", name, err))
		}
	}
	if c.Fetch.MaxAttempts < 1 || c.Fetch.MaxAttempts > 10 {
		problems = append(problems, "fetch.max_attempts must be between 1 and 10")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		problems = append(problems, "viewport width and height must be > 0")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
