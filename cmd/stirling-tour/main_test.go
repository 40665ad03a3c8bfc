package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/BlueDragon92003/stirling-engine/engine"
	"github.com/BlueDragon92003/stirling-engine/input"
	"github.com/BlueDragon92003/stirling-engine/status"
	"github.com/BlueDragon92003/stirling-engine/terminal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stirling.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestResolveConfig(t *testing.T) {
	file := writeConfig(t, "ticks_per_second: 60\nwatchdog: 250ms\nlog:\n  debug: true\n")

	tests := []struct {
		name         string
		args         []string
		wantTPS      int
		wantWatchdog time.Duration
		wantDebug    bool
		wantErr      bool
	}{
		{"defaults", nil, defaultTPS, defaultWatchdog, false, false},
		{"flags", []string{"-tps", "50", "-watchdog", "2s"}, 50, 2 * time.Second, false, false},
		{"file", []string{"-config", file}, 60, 250 * time.Millisecond, true, false},
		{"flags override file", []string{"-config", file, "-tps", "30", "-debug=false"}, 30, 250 * time.Millisecond, false, false},
		{"invalid tps", []string{"-tps", "0"}, 0, 0, false, true},
		{"invalid watchdog", []string{"-watchdog", "-1s"}, 0, 0, false, true},
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}, 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := parseFlags(tt.args)
			if err != nil {
				t.Fatalf("parseFlags(%v): %v", tt.args, err)
			}
			cfg, err := flags.resolve()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if *cfg.TicksPerSecond != tt.wantTPS {
				t.Errorf("TicksPerSecond = %d, want %d", *cfg.TicksPerSecond, tt.wantTPS)
			}
			if *cfg.Watchdog != tt.wantWatchdog {
				t.Errorf("Watchdog = %v, want %v", *cfg.Watchdog, tt.wantWatchdog)
			}
			if cfg.Log.Debug != tt.wantDebug {
				t.Errorf("Log.Debug = %v, want %v", cfg.Log.Debug, tt.wantDebug)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean", nil, exitOK},
		{"watchdog", &engine.WatchdogError{Elapsed: 2 * time.Second, Limit: time.Second}, exitWatchdog},
		{"wrapped watchdog", fmt.Errorf("run: %w", engine.ErrWatchdogExceeded), exitWatchdog},
		{"poll failure", errors.New("engine: poll: broken"), exitError},
	}

	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTourControlFlow(t *testing.T) {
	a := input.KeyOf(terminal.KeyboardDevice, 'a')

	tests := []struct {
		name      string
		limit     uint64
		idlePause bool
		down      bool
		tick      uint64
		want      engine.ControlFlow
	}{
		{"runs without limit", 0, false, false, 1000, engine.ControlRun},
		{"runs before limit", 10, false, false, 9, engine.ControlRun},
		{"exits at limit", 10, false, false, 10, engine.ControlExit},
		{"pauses when idle", 0, true, false, 1, engine.ControlPause},
		{"runs while a button is down", 0, true, true, 1, engine.ControlRun},
		{"limit wins over pause", 5, true, false, 5, engine.ControlExit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := input.NewTracker()
			if tt.down {
				tr.Apply(input.Press(a))
			}
			demo := newTour(tt.limit, tt.idlePause)
			if got := demo.Update(tt.tick, tr); got != tt.want {
				t.Errorf("Update(%d) = %v, want %v", tt.tick, got, tt.want)
			}
		})
	}
}

// screenRow reads one row of a simulation screen as text
func screenRow(sim tcell.SimulationScreen, row int) string {
	cells, w, _ := sim.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		for _, r := range cells[row*w+x].Runes {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestTourDraws(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	defer sim.Fini()
	sim.SetSize(60, 12)

	reg := status.NewRegistry()
	reg.Ints.Get(status.KeyTicks).Store(1234)

	tr := input.NewTracker()
	tr.Apply(input.Press(input.KeyOf(terminal.KeyboardDevice, 'a')))

	demo := newTour(0, false)
	demo.attach(sim, reg, terminal.DefaultOptions().QuitKeys)
	demo.Update(1234, tr)

	if got := screenRow(sim, 0); got != "stirling tour  tick 1,234" {
		t.Errorf("row 0 = %q", got)
	}
	if got := screenRow(sim, 1); got != "quit: escape / ctrl_c" {
		t.Errorf("row 1 = %q", got)
	}
	if got := screenRow(sim, 3); !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "Pressed(0)") {
		t.Errorf("row 3 = %q, want the pressed key", got)
	}
	if got := screenRow(sim, 5); got != status.KeyTicks+"=1234" {
		t.Errorf("row 5 = %q, want the tick counter", got)
	}
}

func TestStateStyle(t *testing.T) {
	fg := func(s input.ButtonState) tcell.Color {
		c, _, _ := stateStyle(s).Decompose()
		return c
	}

	if fg(input.Pressed(0)) == fg(input.Held(heatTicks)) {
		t.Error("Expected a long hold to be coloured differently from a fresh press")
	}
	if fg(input.Held(heatTicks)) != fg(input.Held(heatTicks*10)) {
		t.Error("Expected hold colour to saturate at heatTicks")
	}
	if stateStyle(input.Open(3)) != dimStyle {
		t.Error("Expected open buttons to use the dim style")
	}
}

// TestRunHeadless drives the whole demo on a simulated screen
func TestRunHeadless(t *testing.T) {
	restoreLog(t)

	dump := filepath.Join(t.TempDir(), "input.dot")
	code := run([]string{"-headless", "-ticks", "5", "-tps", "1000", "-watchdog", "5s", "-memviz", dump})
	if code != exitOK {
		t.Fatalf("run() = %d, want %d", code, exitOK)
	}
	if info, err := os.Stat(dump); err != nil || info.Size() == 0 {
		t.Errorf("Expected a memviz dump at %s, stat err %v", dump, err)
	}
}

func TestRunHeadlessNeedsTicks(t *testing.T) {
	if code := run([]string{"-headless"}); code != exitError {
		t.Errorf("run(-headless) = %d, want %d", code, exitError)
	}
}

func TestRunHeadlessRejectsIdlePause(t *testing.T) {
	done := make(chan int, 1)
	go func() {
		done <- run([]string{"-headless", "-ticks", "5", "-tps", "1000", "-watchdog", "5s", "-idle-pause"})
	}()

	select {
	case code := <-done:
		if code != exitError {
			t.Errorf("run(-headless -idle-pause) = %d, want %d", code, exitError)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run(-headless -idle-pause) did not return")
	}
}
