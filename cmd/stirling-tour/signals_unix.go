//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// closeSignals end the loop through Poller.RequestClose
var closeSignals = []os.Signal{os.Interrupt, unix.SIGTERM, unix.SIGHUP}
