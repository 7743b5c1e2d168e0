package config

import (
	"os"

	"github.com/phuslu/log"
	gormlogger "gorm.io/gorm/logger"
)

// SetupLogging installs the process-wide logger at the configured level
func SetupLogging(cfg LoggingConfig) {
	log.DefaultLogger = log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		},
	}
}

// ParseLevel maps a level name onto phuslu/log levels, defaulting to info
func ParseLevel(level string) log.Level {
	switch level {
	case "debug", "DEBUG":
		return log.DebugLevel
	case "warn", "WARN", "warning":
		return log.WarnLevel
	case "error", "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// GormLogLevel picks the GORM logger level. SQL statements are only logged
// when explicitly enabled; otherwise GORM reports errors.
func GormLogLevel(cfg LoggingConfig) gormlogger.LogLevel {
	if !cfg.SQL {
		return gormlogger.Error
	}
	switch ParseLevel(cfg.Level) {
	case log.DebugLevel, log.InfoLevel:
		return gormlogger.Info
	case log.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
