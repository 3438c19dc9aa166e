package config

import (
	"github.com/maxviazov/user-directory-service/internal/logger"
)

type Config struct {
	App        AppConfig           `mapstructure:"app"`
	HTTP       HTTPConfig          `mapstructure:"http"`
	Logger     logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Postgres   PostgresConfig      `mapstructure:"postgres"`
	Pagination PaginationConfig    `mapstructure:"pagination"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// HTTPConfig tunes the gin server. Timeouts are in seconds.
type HTTPConfig struct {
	ReadTimeout     int      `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    int      `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout" validate:"gte=0"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// PostgresConfig holds connection and pool settings. Durations are in seconds.
// Credentials are expected from APP_POSTGRES_* env vars, not the YAML file.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime" validate:"gte=0"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time" validate:"gte=0"`
	HealthCheckPeriod int    `mapstructure:"health_check_period" validate:"gte=0"`
}

// PaginationConfig sets listing defaults. MaxPerPage caps what clients may request.
type PaginationConfig struct {
	DefaultPerPage int  `mapstructure:"default_per_page" validate:"gte=1"`
	MaxPerPage     int  `mapstructure:"max_per_page" validate:"gtefield=DefaultPerPage,lte=1000"`
	PrevNextLinks  bool `mapstructure:"prev_next_links"`
}
