//go:build !statsview

package statsview

import "io"

// Address the chart server would listen on
const Address = "localhost:12600"

// Launch does nothing without the statsview build tag
func Launch(output io.Writer) {}

// Available reports whether the chart server was compiled in
func Available() bool {
	return false
}
