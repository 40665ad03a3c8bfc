//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/BlueDragon92003/stirling-engine/core"
)

// Address the chart server listens on
const Address = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the chart server in a crash-guarded goroutine and reports where it listens
func Launch(output io.Writer) {
	viewer.SetConfiguration(viewer.WithAddr(Address))
	mgr := statsview.New()
	core.Go(func() {
		mgr.Start()
	})

	fmt.Fprintf(output, "stats server available at %s%s\n", Address, url)
}

// Available reports whether the chart server was compiled in
func Available() bool {
	return true
}
