package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// openSink fills rotation defaults into cfg and opens its writers. A log file
// that cannot be created is reported on stderr and skipped.
func openSink(cfg *Config) io.Writer {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 30
	}
	if cfg.LogFilePath == "" {
		cfg.LogFilePath = fmt.Sprintf("/var/log/%s/app.log", cfg.ServiceName)
	}

	var writers []io.Writer
	if !cfg.FileOnly {
		writers = append(writers, os.Stdout)
	}
	if file := rotatingFile(cfg); file != nil {
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return io.MultiWriter(writers...)
	}
}

func rotatingFile(cfg *Config) io.Writer {
	dir := filepath.Dir(cfg.LogFilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Cannot create log directory %s: %v\n", dir, err)
		return nil
	}

	// lumberjack creates the file lazily; create it now so it starts out private.
	if f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
		f.Close()
	}
	os.Chmod(cfg.LogFilePath, 0600)

	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
