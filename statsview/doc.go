// Package statsview serves Go runtime charts while the loop runs.
//
// The server is only compiled in with the statsview build tag:
//
//	go build -tags statsview ./cmd/stirling-tour
//
// Charts are then served at localhost:12600/debug/statsview and the
// standard pprof handlers at localhost:12600/debug/pprof/.
package statsview
