package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	davhttp "github.com/avendal/davgate/http"
)

// Config is the root configuration struct for davgate. Loaded once at
// startup, immutable afterwards.
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Scope     ScopeConfig        `mapstructure:"scope"`
	Reaper    ReaperConfig       `mapstructure:"reaper"`
	RateLimit RateLimitConfig    `mapstructure:"rate_limit"`
	CORS      davhttp.CORSConfig `mapstructure:"cors"`
	Log       LogConfig          `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. There are no global
// read/write timeouts: WebDAV transfers can legitimately run for a long
// time, so only the header read and idle timeouts are bounded.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// MaxUploadSize caps request bodies in bytes. 0 selects the default
	// (524288000); negative disables the cap.
	MaxUploadSize     int64         `mapstructure:"max_upload_size"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
}

// ScopeConfig holds the gateway's path-scoping policy.
type ScopeConfig struct {
	// Path is the URL prefix the gateway answers for.
	Path string `mapstructure:"path" validate:"required,startswith=/"`
	// Root is the on-disk directory the engine serves.
	Root string `mapstructure:"root" validate:"required"`
	// Segment is the tenant sub-scope under Path; empty serves Path alone.
	Segment string `mapstructure:"segment"`
}

// ReaperConfig holds post-upload housekeeping configuration.
type ReaperConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	MaxAge  time.Duration `mapstructure:"max_age" validate:"min=0"`
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"min=0"`
	Burst   int     `mapstructure:"burst" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":          "server.port",
	"scope-path":    "scope.path",
	"scope-root":    "scope.root",
	"scope-segment": "scope.segment",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_size", 0)
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("scope.path", "/files")
	v.SetDefault("scope.root", "./data")
	v.SetDefault("scope.segment", "")

	v.SetDefault("reaper.enabled", true)
	v.SetDefault("reaper.max_age", "24h")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("DAVGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
