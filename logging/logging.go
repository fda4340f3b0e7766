// Package logging builds the zap logger used across the module
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FileName is the active log file inside the log directory
	FileName = "trophy.log"
	// MaxSize is the size past which the previous log is rotated aside at startup
	MaxSize = 10 * 1024 * 1024
)

// Setup returns a no-op logger unless debug is set
// With debug, JSON lines go to <dir>/trophy.log and never to stdout/stderr,
// which belong to the host's terminal UI
func Setup(debug bool, dir string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := rotate(path, time.Now()); err != nil {
		return nil, fmt.Errorf("rotate log: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// rotate renames an oversized log to a timestamped sibling
func rotate(path string, now time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() <= MaxSize {
		return nil
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	rotated := fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext)
	return os.Rename(path, rotated)
}
