// Command stirling-tour runs the fixed-timestep loop in a terminal and shows what it sees:
// the tick counter, every button currently down with its state, and the loop's counters.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BlueDragon92003/stirling-engine/config"
	"github.com/BlueDragon92003/stirling-engine/core"
	"github.com/BlueDragon92003/stirling-engine/engine"
	"github.com/BlueDragon92003/stirling-engine/input"
	"github.com/BlueDragon92003/stirling-engine/statsview"
	"github.com/BlueDragon92003/stirling-engine/terminal"
)

const (
	defaultTPS      = 20
	defaultWatchdog = time.Minute
)

// Exit statuses
const (
	exitOK       = 0
	exitError    = 1
	exitWatchdog = 2
)

// cliFlags holds parsed command-line flags; set records which were given explicitly
type cliFlags struct {
	configPath string
	tps        int
	watchdog   time.Duration
	ticks      uint64
	idlePause  bool
	headless   bool
	debug      bool
	stats      bool
	memviz     string
	dumpConfig bool

	set map[string]bool
}

func main() {
	// Panic recovery: restore the terminal even if the loop crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	os.Exit(run(os.Args[1:]))
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet("stirling-tour", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	fs.IntVar(&f.tps, "tps", defaultTPS, "Ticks per second (overrides config)")
	fs.DurationVar(&f.watchdog, "watchdog", defaultWatchdog, "Longest tolerated gap between frames (overrides config)")
	fs.Uint64Var(&f.ticks, "ticks", 0, "Exit after this many ticks; 0 runs until a quit key")
	fs.BoolVar(&f.idlePause, "idle-pause", false, "Pause the loop while no button is down; not allowed headless")
	fs.BoolVar(&f.headless, "headless", false, "Run on a simulated screen; requires -ticks")
	fs.BoolVar(&f.debug, "debug", false, "Write logs to the log directory")
	fs.BoolVar(&f.stats, "stats", false, "Serve runtime charts (needs -tags statsview)")
	fs.StringVar(&f.memviz, "memviz", "", "Write a graphviz dump of the final input state to this file")
	fs.BoolVar(&f.dumpConfig, "dump-config", false, "Print the effective config as YAML and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// resolve merges the config file, explicit flags, then the demo defaults
func (f *cliFlags) resolve() (*config.Config, error) {
	cfg := &config.Config{}
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.set["tps"] || cfg.TicksPerSecond == nil {
		cfg.SetTPS(f.tps)
	}
	if f.set["watchdog"] || cfg.Watchdog == nil {
		cfg.SetWatchdog(f.watchdog)
	}
	if f.set["debug"] {
		cfg.Log.Debug = f.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string) int {
	flags, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitError
	}

	cfg, err := flags.resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stirling-tour: %v\n", err)
		return exitError
	}

	if flags.dumpConfig {
		out, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "stirling-tour: %v\n", err)
			return exitError
		}
		os.Stdout.Write(out)
		return exitOK
	}

	headless := flags.headless || !term.IsTerminal(int(os.Stdin.Fd()))
	if headless && flags.ticks == 0 {
		fmt.Fprintln(os.Stderr, "stirling-tour: no terminal; headless runs need -ticks")
		return exitError
	}
	// Nothing is ever pressed without a terminal, so an idle pause would never wake
	if headless && flags.idlePause {
		fmt.Fprintln(os.Stderr, "stirling-tour: -idle-pause needs a terminal")
		return exitError
	}

	if logFile := setupLogging(cfg.Log.Dir, cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}

	if flags.stats {
		if statsview.Available() {
			statsview.Launch(log.Writer())
		} else {
			log.Printf("stirling-tour: statsview not compiled in, rebuild with -tags statsview")
		}
	}

	opts := terminal.DefaultOptions()
	if err := opts.ApplyConfig(cfg.Terminal); err != nil {
		fmt.Fprintf(os.Stderr, "stirling-tour: %v\n", err)
		return exitError
	}

	t := newTour(flags.ticks, flags.idlePause)
	eng, err := cfg.Apply(engine.NewBuilder()).SetUpdate(t).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stirling-tour: %v\n", err)
		return exitError
	}

	screen, err := newScreen(headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stirling-tour: screen: %v\n", err)
		return exitError
	}
	fini := sync.OnceFunc(screen.Fini)
	core.OnCrash(fini)
	defer fini()

	t.attach(screen, eng.Status(), opts.QuitKeys)
	poller := terminal.NewPoller(screen, opts)
	defer poller.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, closeSignals...)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	core.Go(func() {
		select {
		case <-sigCh:
			poller.RequestClose()
		case <-done:
		}
	})

	report, runErr := eng.Run(poller)

	// Restore the terminal before printing anything
	poller.Stop()
	fini()

	if flags.memviz != "" {
		if err := dumpInput(flags.memviz, eng.Input()); err != nil {
			fmt.Fprintf(os.Stderr, "stirling-tour: memviz: %v\n", err)
		}
	}

	p := message.NewPrinter(language.English)
	p.Printf("%v after %d ticks, %d frames in %v\n",
		report.Outcome, report.Ticks, report.Frames, report.Elapsed.Round(time.Millisecond))
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "stirling-tour: %v\n", runErr)
	}
	return exitCode(runErr)
}

// exitCode maps a run result to the process status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, engine.ErrWatchdogExceeded):
		return exitWatchdog
	default:
		return exitError
	}
}

func newScreen(headless bool) (tcell.Screen, error) {
	if headless {
		sim := tcell.NewSimulationScreen("UTF-8")
		if err := sim.Init(); err != nil {
			return nil, err
		}
		sim.SetSize(80, 24)
		return sim, nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// dumpInput writes the tracker's final state as a graphviz graph
func dumpInput(path string, in input.View) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	memviz.Map(f, in)
	return f.Close()
}
