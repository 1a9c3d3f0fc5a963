package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Store   StoreConfig
	Auth    AuthConfig
	Exports ExportsConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// StoreConfig locates the persisted document and tunes seeding.
type StoreConfig struct {
	DocumentPath string
	SeedDemoData bool
}

// AuthConfig tunes the demo login flows.
type AuthConfig struct {
	OTPLength   int
	OTPTTL      time.Duration
	MinPhoneLen int
}

// ExportsConfig controls rendered export files.
type ExportsConfig struct {
	Dir       string
	ResultTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles prometheus collector registration.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Store = StoreConfig{
		DocumentPath: v.GetString("DOCUMENT_PATH"),
		SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
	}

	cfg.Auth = AuthConfig{
		OTPLength:   v.GetInt("OTP_LENGTH"),
		OTPTTL:      parseDuration(v.GetString("OTP_TTL"), 5*time.Minute),
		MinPhoneLen: v.GetInt("MIN_PHONE_LENGTH"),
	}

	cfg.Exports = ExportsConfig{
		Dir:       v.GetString("EXPORTS_DIR"),
		ResultTTL: parseDuration(v.GetString("EXPORTS_RESULT_TTL"), 24*time.Hour),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DOCUMENT_PATH", "./schoolmate.json")
	v.SetDefault("SEED_DEMO_DATA", true)

	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("MIN_PHONE_LENGTH", 7)

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_RESULT_TTL", "24h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
