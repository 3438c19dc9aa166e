package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type LoggerConfig struct {
	Level              string         `mapstructure:"level" json:"level,omitempty" validate:"oneof=trace debug info warn error"`
	Format             string         `mapstructure:"format" json:"format,omitempty" validate:"oneof=json console"`
	OutputTarget       string         `mapstructure:"output_target" json:"outputTarget,omitempty" validate:"oneof=stdout stderr"`
	TimeField          string         `mapstructure:"time_field" json:"timeField,omitempty"`
	TimeFormat         string         `mapstructure:"time_format" json:"timeFormat,omitempty"`
	ServiceName        string         `mapstructure:"service_name" json:"serviceName,omitempty"`
	ServiceVersion     string         `mapstructure:"service_version" json:"serviceVersion,omitempty"`
	Env                string         `mapstructure:"env" json:"env,omitempty" validate:"oneof=dev test staging prod"`
	WithCaller         bool           `mapstructure:"with_caller" json:"withCaller,omitempty"`
	Stacktrace         bool           `mapstructure:"stacktrace" json:"stacktrace,omitempty"`
	StacktraceMinLevel string         `mapstructure:"stacktrace_min_level" json:"stacktraceMinLevel,omitempty" validate:"oneof=debug info warn error fatal panic"`
	DebugFile          string         `mapstructure:"debug_file" json:"debugFile,omitempty"`
	Fields             map[string]any `mapstructure:"fields" json:"fields,omitempty"`
}

// timeFormats maps config names to zerolog layouts; unknown values are used as a layout verbatim.
var timeFormats = map[string]string{
	"rfc3339":     "2006-01-02T15:04:05Z07:00",
	"rfc3339nano": "2006-01-02T15:04:05.999999999Z07:00",
	"unix":        zerolog.TimeFormatUnix,
	"unix_ms":     zerolog.TimeFormatUnixMs,
}

func New(logg *LoggerConfig) (logger zerolog.Logger, err error) {
	logg.setDefaults()

	v := validator.New()
	if err = v.Struct(logg); err != nil {
		return logger, fmt.Errorf("logger config validation error: %w", err)
	}

	level, err := zerolog.ParseLevel(logg.Level)
	if err != nil {
		return logger, err
	}

	timeFormat := logg.TimeFormat
	if layout, ok := timeFormats[timeFormat]; ok {
		timeFormat = layout
	}
	zerolog.TimestampFieldName = logg.TimeField
	zerolog.TimeFieldFormat = timeFormat

	var out io.Writer = os.Stdout
	if logg.OutputTarget == "stderr" {
		out = os.Stderr
	}
	if logg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	// dev + debug also keeps the full history on disk; a file that cannot be opened is skipped
	if logg.Env == "dev" && level <= zerolog.DebugLevel && logg.DebugFile != "" {
		if file, ferr := openDebugFile(logg.DebugFile); ferr == nil {
			out = zerolog.MultiLevelWriter(out, file)
		}
	}

	logger = zerolog.New(out).
		With().
		Timestamp().
		Str("service", logg.ServiceName).
		Str("version", logg.ServiceVersion).
		Str("env", logg.Env).
		Logger()

	if logg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	if logg.Stacktrace {
		logger = logger.With().Stack().Logger()
	}
	if len(logg.Fields) > 0 {
		logger = logger.With().Fields(logg.Fields).Logger()
	}

	// global level gates every logger, including zerolog/log used by middleware
	zerolog.SetGlobalLevel(level)

	return logger, nil
}

func openDebugFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

func (c *LoggerConfig) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}

	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}

	if c.Format == "" {
		if c.Env == "dev" {
			c.Format = "console"
		} else {
			c.Format = "json"
		}
	}

	if c.OutputTarget == "" {
		c.OutputTarget = "stdout"
	}

	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}

	if !c.WithCaller && c.Env == "dev" {
		c.WithCaller = true
	}
	if c.StacktraceMinLevel == "" {
		c.StacktraceMinLevel = "error"
	}
	if c.Env == "dev" && c.DebugFile == "" {
		c.DebugFile = "logs/debug.log"
	}

	if c.ServiceName == "" {
		c.ServiceName = "user-directory-service"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.1"
	}

	if c.Fields == nil {
		c.Fields = make(map[string]any)
	}
}
