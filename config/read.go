package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/dentaldesk/pkg/constants"
)

var GlobalConf *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.max", 60)
	v.SetDefault("server.rate_limit.window_seconds", 30)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("session.header", "X-Session-Id")
	v.SetDefault("session.cookie", "session_id")
	v.SetDefault("session.key_prefix", "session:")

	v.SetDefault("backend.api_prefix", "/api")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("backend.user_agent", constants.AppName)

	v.SetDefault("dashboard.timezone", "UTC")
	v.SetDefault("dashboard.recent_window_days", 30)
	v.SetDefault("dashboard.phone_region", "US")
	v.SetDefault("dashboard.toast_ttl_seconds", 5)
	v.SetDefault("dashboard.session_idle_minutes", 60)
	v.SetDefault("dashboard.sweep_interval_seconds", 60)

	v.SetDefault("observability.service_name", constants.AppName)
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)
	setDefaults(v)

	// Allow env vars to override config values.
	// e.g. DENTALDESK_BACKEND_BASE_URL overrides backend.base_url
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	_ = v.BindEnv("backend.base_url")

	// The config file is optional; defaults plus env vars are enough to run.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
