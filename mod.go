// Package oracle defines the logger and the metric collectors shared by the
// packages of the module.
package oracle

import (
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// EnvLogLevel is the name of the environment variable to change the logging
// level.
const EnvLogLevel = "LLVL"

const defaultLevel = zerolog.InfoLevel

func init() {
	LogLevel = ParseLogLevel(os.Getenv(EnvLogLevel))

	Logger = Logger.Level(LogLevel)
}

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// LogLevel is the default log level, which can be changed with the LLVL
// environment variable.
var LogLevel = defaultLevel

// Logger is a globally available logger instance. By default, it only prints
// info and higher levels.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(defaultLevel)

// PromCollectors exposes Prometheus collectors created in the packages. They
// are registered by whoever serves the metrics.
var PromCollectors []prometheus.Collector

// ParseLogLevel returns the zerolog level of the string. Unknown or empty
// values return the default level.
func ParseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return defaultLevel
	}
}
