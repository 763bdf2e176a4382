package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type SessionConfig struct {
	MaxGuests    int           `mapstructure:"max_guests"`
	TTL          time.Duration `mapstructure:"ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	NotifyOnReap bool          `mapstructure:"notify_on_reap"`
	IDLength     int           `mapstructure:"id_length"`
}

type LimitsConfig struct {
	ChatPerInterval int           `mapstructure:"chat_per_interval"`
	ChatInterval    time.Duration `mapstructure:"chat_interval"`
	JoinPerInterval int           `mapstructure:"join_per_interval"`
	JoinInterval    time.Duration `mapstructure:"join_interval"`
}

type ICEConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	Secret         string        `mapstructure:"secret"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`

	Session SessionConfig `mapstructure:"session"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	ICE     ICEConfig     `mapstructure:"ice"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "change-me")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("write_wait", "10s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("allowed_origins", []string{})

	v.SetDefault("session.max_guests", 99)
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.reap_interval", "5m")
	v.SetDefault("session.notify_on_reap", false)
	v.SetDefault("session.id_length", 26)

	v.SetDefault("limits.chat_per_interval", 20)
	v.SetDefault("limits.chat_interval", "10s")
	v.SetDefault("limits.join_per_interval", 10)
	v.SetDefault("limits.join_interval", "1m")

	v.SetDefault("ice.urls", []string{"stun:stun.l.google.com:19302"})
}

// Load reads config/config.<CONFIG_ENV>.yaml, then WATCH_* environment overrides.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("WATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Int("max_guests", cfg.Session.MaxGuests).Dur("session_ttl", cfg.Session.TTL).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Session.MaxGuests <= 0:
		return fmt.Errorf("session.max_guests must be positive, got %d", c.Session.MaxGuests)
	case c.Session.TTL <= 0 || c.Session.ReapInterval <= 0:
		return errors.New("session.ttl and session.reap_interval must be positive")
	case c.PingPeriod <= 0 || c.WriteWait <= 0:
		return fmt.Errorf("ping_period (%s) and write_wait (%s) must be positive", c.PingPeriod, c.WriteWait)
	case c.PingPeriod >= c.PongWait:
		return fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	return nil
}
