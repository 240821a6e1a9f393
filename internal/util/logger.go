package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger = zerolog.Nop()
	loggerCloser io.Closer
	loggerOnce   sync.Once
)

// NewLogger builds a zerolog logger writing to logFile and, in debug mode, to stderr as well.
// The returned closer releases the log file and is nil when no file was opened.
func NewLogger(levelStr string, logFile string, debugToConsole bool) (zerolog.Logger, io.Closer, error) {
	writers := make([]io.Writer, 0, 2)
	var closer io.Closer

	if debugToConsole {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil, fmt.Errorf("log file must be specified when not in debug mode")
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).
		Level(parseLogLevel(levelStr)).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

// parseLogLevel parses a log level string
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger initializes the global logger instance with debug mode support
func InitLogger(logLevel, logFile string, debugToConsole bool) {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		logger, closer, err := NewLogger(logLevel, logFile, debugToConsole)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
			return
		}
		globalLogger = logger
		loggerCloser = closer
	})
}

// CloseLogger flushes and closes the log file opened by InitLogger.
func CloseLogger() {
	if loggerCloser != nil {
		_ = loggerCloser.Close()
		loggerCloser = nil
	}
	globalLogger = zerolog.Nop()
}

// Logger exposes the global logger for call sites that attach structured fields.
func Logger() *zerolog.Logger {
	return &globalLogger
}

func LogInfo(msg string) {
	globalLogger.Info().Msg(msg)
}

func LogInfof(format string, args ...interface{}) {
	globalLogger.Info().Msgf(format, args...)
}

func LogDebug(msg string) {
	globalLogger.Debug().Msg(msg)
}

func LogDebugf(format string, args ...interface{}) {
	globalLogger.Debug().Msgf(format, args...)
}

func LogWarn(msg string) {
	globalLogger.Warn().Msg(msg)
}

func LogWarnf(format string, args ...interface{}) {
	globalLogger.Warn().Msgf(format, args...)
}

func LogError(msg string) {
	globalLogger.Error().Msg(msg)
}

func LogErrorf(format string, args ...interface{}) {
	globalLogger.Error().Msgf(format, args...)
}
