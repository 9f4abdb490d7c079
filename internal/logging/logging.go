package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process wide logger
type Options struct {
	Environment string
	Level       string
	File        string
}

// Setup initializes the standard logrus logger with a JSON formatter.
// The level follows the environment unless Level names a valid logrus level.
// When File is set, output is duplicated to a rotated log file.
func Setup(opts Options) io.Closer {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(LevelFor(opts.Environment, opts.Level))

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    32, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return file
}

// LevelFor resolves the log level from an explicit level or the environment
func LevelFor(environment, level string) log.Level {
	if level != "" {
		if parsed, err := log.ParseLevel(level); err == nil {
			return parsed
		}
	}
	switch environment {
	case "development":
		return log.DebugLevel
	case "production":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
