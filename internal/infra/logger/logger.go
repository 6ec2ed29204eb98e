// Package logger provides structured logging using zerolog.
package logger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Output string // "console" or "file"
	Level  string // "trace", "debug", "info", "warn", "error"
	File   string // log file path (used when Output is "file")
}

// Init initializes the global zerolog logger with the given configuration.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.TimeOnly
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		parts := strings.Split(file, string(filepath.Separator))
		if len(parts) > 1 {
			return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
		}
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	// Console output is colorized; file output stays JSON so it can be
	// post-processed. Caller info only below debug to keep info lines short.
	var logger zerolog.Logger
	if strings.ToLower(cfg.Output) == "file" && cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		base := zerolog.New(f).With().Timestamp()
		if level <= zerolog.DebugLevel {
			logger = base.Caller().Logger()
		} else {
			logger = base.Logger()
		}
	} else {
		writer := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.TimeOnly,
		}
		if level <= zerolog.DebugLevel {
			writer.PartsOrder = []string{"time", "level", "message", "caller"}
			writer.FormatCaller = func(i interface{}) string {
				return "(" + i.(string) + ")"
			}
			logger = zerolog.New(writer).With().Timestamp().Caller().Logger()
		} else {
			logger = zerolog.New(writer).With().Timestamp().Logger()
		}
	}

	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger

	return nil
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
