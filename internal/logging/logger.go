package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ParseLevel maps a config level string to a slog level. Unknown strings
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New initializes a logger that writes to both stdout and a log file.
func New(outputDir, logFileName string, level slog.Level) (*slog.Logger, *os.File) {
	var logWriter io.Writer = os.Stdout
	var logFile *os.File

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	if logFileName != "" {
		logPath := filepath.Join(outputDir, logFileName)
		var err error
		logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			slog.Error("Failed to open log file, continuing with stdout only", "error", err, "path", logPath)
		} else {
			mw := io.MultiWriter(os.Stdout, logFile)
			logWriter = mw
		}
	}

	logger := slog.New(slog.NewJSONHandler(logWriter, handlerOpts))
	slog.SetDefault(logger)

	return logger, logFile
}

// NewFileOnly initializes a logger that writes only to a log file. The
// interactive UI owns stdout, so JSON log lines must stay out of it. When
// the file cannot be opened the logger discards everything.
func NewFileOnly(outputDir, logFileName string, level slog.Level) (*slog.Logger, *os.File) {
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	if logFileName == "" {
		logger := slog.New(slog.NewJSONHandler(io.Discard, handlerOpts))
		slog.SetDefault(logger)
		return logger, nil
	}

	logPath := filepath.Join(outputDir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		logger := slog.New(slog.NewJSONHandler(io.Discard, handlerOpts))
		slog.SetDefault(logger)
		return logger, nil
	}

	logger := slog.New(slog.NewJSONHandler(logFile, handlerOpts))
	slog.SetDefault(logger)

	return logger, logFile
}
