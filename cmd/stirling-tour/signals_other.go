//go:build !unix

package main

import "os"

// closeSignals end the loop through Poller.RequestClose
var closeSignals = []os.Signal{os.Interrupt}
