// Package core holds process-level helpers shared by hosts: panic handling for owned goroutines
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu      sync.Mutex
	crashCleanup []func()
	crashOutput  io.Writer = os.Stderr
	crashExit              = os.Exit
)

// OnCrash registers cleanup to run before the crash report, e.g. restoring the terminal
// Cleanups run in reverse registration order, once
func OnCrash(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashCleanup = append(crashCleanup, fn)
}

// HandleCrash is the unified panic handler: runs cleanups, prints the value and stack, exits 1
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanups := crashCleanup
	crashCleanup = nil
	out, exit := crashOutput, crashExit
	crashMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		runCleanup(cleanups[i])
	}

	// \r\n keeps the report readable if a raw-mode terminal could not be restored
	fmt.Fprintf(out, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(out, "Stack Trace:\r\n%s\r\n", debug.Stack())

	exit(1)
}

// runCleanup isolates a failing cleanup so the report still prints
func runCleanup(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword for goroutines that touch the terminal.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
