package repository

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger adapts zerolog.Logger to pgx's tracelog.Logger.
type pgxLogger struct {
	logger zerolog.Logger
}

// newPgxLogger tags the child logger with component=pgx so SQL noise stays filterable.
func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

func (l *pgxLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	default:
		return l.logger.Info().Str("pgx_log_level", level.String())
	}
}

// Log implements tracelog.Logger. sql and args are lifted into dedicated fields;
// the data map is copied so pgx's own map is never modified.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}
	event := l.event(level)
	if event == nil {
		return
	}

	rest := make(map[string]any, len(data))
	for k, v := range data {
		switch k {
		case "sql":
			if s, ok := v.(string); ok {
				event = event.Str("sql", s)
			} else {
				event = event.Interface("sql", v)
			}
		case "args":
			event = event.Interface("args", v)
		default:
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		event = event.Fields(rest)
	}
	event.Msg(msg)
}
