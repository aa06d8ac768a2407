// Package logging configures the run logger. Single backtest runs log every
// bar event; sweep runs keep logging off since hundreds of simulations would
// drown the log directory.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger settings. Zero values fall back to info-level text
// logging on stdout.
type Config struct {
	Level      string `json:"level" yaml:"level"`             // debug, info, warn, error
	Format     string `json:"format" yaml:"format"`           // text or json
	Output     string `json:"output" yaml:"output"`           // stdout, file, both
	Directory  string `json:"directory" yaml:"directory"`     // log_directory for file output
	File       string `json:"file" yaml:"file"`               // file name, default run.log
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"` // rotation threshold
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// New builds a logrus logger from cfg. File output rotates via lumberjack.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	var output io.Writer
	switch cfg.Output {
	case "file":
		output = fileWriter(cfg)
	case "both":
		output = io.MultiWriter(os.Stdout, fileWriter(cfg))
	default:
		output = os.Stdout
	}
	logger.SetOutput(output)

	return logger
}

// Discard returns a logger that drops everything. The sweep's quiet strategy
// variant uses it so per-bar logging cost disappears across hundreds of runs.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func fileWriter(cfg Config) io.Writer {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return os.Stdout
	}

	name := cfg.File
	if name == "" {
		name = "run.log"
	}
	maxSize := cfg.MaxSizeMB
	if maxSize == 0 {
		maxSize = 50
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, name),
		MaxSize:    maxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}
}
