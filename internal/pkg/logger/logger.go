package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"indengsvc/backend/internal/pkg/config"
)

// New returns a logger writing to stderr and, when a file is configured, to
// a size-rotated log file. The writer is returned too so gin and bundebug can
// share the same sink.
func New(cfg config.Log) (*log.Logger, io.Writer) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}

	return log.New(w, "INDENG : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), w
}
