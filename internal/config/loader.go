package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaults registers every key so APP_* env vars are honored even when the YAML omits them.
var defaults = map[string]any{
	"app.name":                     "user-directory-service",
	"app.version":                  "0.0.1",
	"app.env":                      "prod",
	"app.port":                     8080,
	"http.read_timeout":            10,
	"http.write_timeout":           10,
	"http.shutdown_timeout":        15,
	"http.cors_origins":            []string{"*"},
	"logger.level":                 "",
	"logger.format":                "",
	"logger.output_target":         "",
	"logger.time_field":            "",
	"logger.time_format":           "",
	"logger.service_name":          "",
	"logger.service_version":       "",
	"logger.env":                   "",
	"logger.with_caller":           false,
	"logger.stacktrace":            false,
	"postgres.host":                "localhost",
	"postgres.port":                5432,
	"postgres.user":                "",
	"postgres.password":            "",
	"postgres.db":                  "",
	"postgres.sslmode":             "disable",
	"postgres.max_conns":           10,
	"postgres.min_conns":           1,
	"postgres.max_conn_lifetime":   3600,
	"postgres.max_conn_idle_time":  300,
	"postgres.health_check_period": 30,
	"pagination.default_per_page":  15,
	"pagination.max_per_page":      100,
	"pagination.prev_next_links":   true,
}

// Load reads the YAML file at path, applies APP_* env overrides (a sibling .env
// file is loaded first when present) and validates the result.
func Load(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &config, nil
}
