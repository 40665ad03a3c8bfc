package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultLogDir = "logs"
	logFileName   = "stirling.log"
	maxLogSize    = 10 * 1024 * 1024
)

// setupLogging points the standard logger at dir/stirling.log when debug is set,
// rotating a file larger than maxLogSize; otherwise output is discarded.
// The terminal is in raw mode while the loop runs, so logs never go to stdout/stderr.
func setupLogging(dir string, debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if dir == "" {
		dir = defaultLogDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "log dir %s: %v\n", dir, err)
		log.SetOutput(io.Discard)
		return nil
	}

	path := filepath.Join(dir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(dir, fmt.Sprintf("stirling-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(path, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "rotate %s: %v\n", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("stirling-tour: logging started")
	return f
}
