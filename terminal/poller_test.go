package terminal

import (
	"io"
	"log"
	"slices"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/BlueDragon92003/stirling-engine/engine"
	"github.com/BlueDragon92003/stirling-engine/input"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testOptions(clock engine.TimeProvider) Options {
	opts := DefaultOptions()
	opts.PollInterval = 5 * time.Millisecond
	opts.Clock = clock
	return opts
}

func newTestPoller(t *testing.T, opts Options) (tcell.SimulationScreen, *Poller) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	p := NewPoller(screen, opts)
	t.Cleanup(func() {
		p.Stop()
		screen.Fini()
	})
	return screen, p
}

func post(t *testing.T, screen tcell.Screen, ev tcell.Event) {
	t.Helper()
	if err := screen.PostEvent(ev); err != nil {
		t.Fatalf("PostEvent: %v", err)
	}
}

func postKey(t *testing.T, screen tcell.Screen, k tcell.Key, r rune) {
	t.Helper()
	post(t, screen, tcell.NewEventKey(k, r, tcell.ModNone))
}

func pollOnce(t *testing.T, p *Poller, mode engine.PollMode) engine.Frame {
	t.Helper()
	f, err := p.Poll(mode)
	if err != nil {
		t.Fatalf("Poll(%v): %v", mode, err)
	}
	return f
}

// collect busy-polls until want events arrived or the poller terminates
func collect(t *testing.T, p *Poller, want int) engine.Frame {
	t.Helper()
	var merged engine.Frame
	deadline := time.Now().Add(2 * time.Second)
	for len(merged.Events) < want && !merged.Terminate {
		if time.Now().After(deadline) {
			t.Fatalf("collected %v, want %d events", merged.Events, want)
		}
		f := pollOnce(t, p, engine.PollBusy)
		merged.Events = append(merged.Events, f.Events...)
		merged.Terminate = merged.Terminate || f.Terminate
	}
	return merged
}

func collectUntilTerminate(t *testing.T, p *Poller) engine.Frame {
	t.Helper()
	return collect(t, p, int(^uint(0)>>1))
}

func TestPollerKeyPress(t *testing.T) {
	screen, p := newTestPoller(t, testOptions(engine.NewMockTimeProvider(epoch)))

	postKey(t, screen, tcell.KeyRune, 'a')
	postKey(t, screen, tcell.KeyUp, 0)

	got := collect(t, p, 2)
	want := []input.Event{
		input.Press(input.KeyOf(KeyboardDevice, 'a')),
		input.Press(input.KeyOf(KeyboardDevice, specialKeyBase+uint32(tcell.KeyUp))),
	}
	if !slices.Equal(got.Events, want) {
		t.Errorf("Events = %v, want %v", got.Events, want)
	}
	if got.Terminate {
		t.Error("Expected no termination for ordinary keys")
	}
	if p.Held() != 2 {
		t.Errorf("Held() = %d, want 2", p.Held())
	}
}

func TestPollerSynthesisesKeyRelease(t *testing.T) {
	clock := engine.NewMockTimeProvider(epoch)
	screen, p := newTestPoller(t, testOptions(clock))
	a := input.KeyOf(KeyboardDevice, 'a')

	postKey(t, screen, tcell.KeyRune, 'a')
	collect(t, p, 1)

	clock.Advance(DefaultKeyRelease - time.Millisecond)
	if f := pollOnce(t, p, engine.PollBusy); len(f.Events) != 0 {
		t.Fatalf("Events before release delay = %v, want none", f.Events)
	}

	clock.Advance(time.Millisecond)
	f := pollOnce(t, p, engine.PollBusy)
	if want := []input.Event{input.Release(a)}; !slices.Equal(f.Events, want) {
		t.Errorf("Events at release delay = %v, want %v", f.Events, want)
	}
	if p.Held() != 0 {
		t.Errorf("Held() = %d after release, want 0", p.Held())
	}
}

// TestPollerRepeatExtendsHold checks that autorepeat presses restart the release delay
func TestPollerRepeatExtendsHold(t *testing.T) {
	clock := engine.NewMockTimeProvider(epoch)
	screen, p := newTestPoller(t, testOptions(clock))
	a := input.KeyOf(KeyboardDevice, 'a')

	postKey(t, screen, tcell.KeyRune, 'a')
	collect(t, p, 1)

	clock.Advance(100 * time.Millisecond)
	postKey(t, screen, tcell.KeyRune, 'a')
	if got := collect(t, p, 1); !slices.Equal(got.Events, []input.Event{input.Press(a)}) {
		t.Fatalf("repeat Events = %v, want a second press", got.Events)
	}

	clock.Advance(100 * time.Millisecond)
	if f := pollOnce(t, p, engine.PollBusy); len(f.Events) != 0 {
		t.Fatalf("Events 100ms after repeat = %v, want none", f.Events)
	}

	clock.Advance(50 * time.Millisecond)
	if f := pollOnce(t, p, engine.PollBusy); !slices.Equal(f.Events, []input.Event{input.Release(a)}) {
		t.Errorf("Events 150ms after repeat = %v, want release", f.Events)
	}
}

func TestPollerReleasesInIdentityOrder(t *testing.T) {
	clock := engine.NewMockTimeProvider(epoch)
	screen, p := newTestPoller(t, testOptions(clock))

	for _, r := range "zbm" {
		postKey(t, screen, tcell.KeyRune, r)
	}
	collect(t, p, 3)

	clock.Advance(DefaultKeyRelease)
	f := pollOnce(t, p, engine.PollBusy)
	want := []input.Event{
		input.Release(input.KeyOf(KeyboardDevice, 'b')),
		input.Release(input.KeyOf(KeyboardDevice, 'm')),
		input.Release(input.KeyOf(KeyboardDevice, 'z')),
	}
	if !slices.Equal(f.Events, want) {
		t.Errorf("Events = %v, want %v", f.Events, want)
	}
}

func TestPollerQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)},
		{"ctrl_c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen, p := newTestPoller(t, testOptions(engine.NewMockTimeProvider(epoch)))
			post(t, screen, tt.ev)

			got := collectUntilTerminate(t, p)
			if len(got.Events) != 0 {
				t.Errorf("Events = %v, want none for a quit key", got.Events)
			}
		})
	}
}

func TestPollerCustomQuitKeys(t *testing.T) {
	opts := testOptions(engine.NewMockTimeProvider(epoch))
	if err := opts.ApplyConfig(configWithQuitKeys("q")); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	screen, p := newTestPoller(t, opts)

	postKey(t, screen, tcell.KeyEscape, 0)
	got := collect(t, p, 1)
	escape := input.KeyOf(KeyboardDevice, specialKeyBase+uint32(tcell.KeyEscape))
	if got.Terminate || !slices.Equal(got.Events, []input.Event{input.Press(escape)}) {
		t.Fatalf("escape with custom quit keys = %+v, want a plain press", got)
	}

	postKey(t, screen, tcell.KeyRune, 'q')
	collectUntilTerminate(t, p)
}

func TestPollerMouseButtons(t *testing.T) {
	screen, p := newTestPoller(t, testOptions(engine.NewMockTimeProvider(epoch)))
	primary := input.ButtonOf(MouseDevice, MousePrimary)
	secondary := input.ButtonOf(MouseDevice, MouseSecondary)
	middle := input.ButtonOf(MouseDevice, MouseMiddle)

	post(t, screen, tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	post(t, screen, tcell.NewEventMouse(2, 1, tcell.Button1, tcell.ModNone))
	post(t, screen, tcell.NewEventMouse(2, 1, tcell.Button1|tcell.Button2|tcell.Button3, tcell.ModNone))
	post(t, screen, tcell.NewEventMouse(2, 1, tcell.ButtonNone, tcell.ModNone))

	got := collect(t, p, 6)
	want := []input.Event{
		input.Press(primary),
		input.Press(secondary),
		input.Press(middle),
		input.Release(primary),
		input.Release(secondary),
		input.Release(middle),
	}
	if !slices.Equal(got.Events, want) {
		t.Errorf("Events = %v, want %v", got.Events, want)
	}
	if p.Held() != 0 {
		t.Errorf("Held() = %d, mouse buttons must not await synthesised release", p.Held())
	}
}

func TestPollerMouseDisabled(t *testing.T) {
	opts := testOptions(engine.NewMockTimeProvider(epoch))
	opts.Mouse = false
	screen, p := newTestPoller(t, opts)

	post(t, screen, tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	postKey(t, screen, tcell.KeyRune, 'x')

	got := collect(t, p, 1)
	if want := []input.Event{input.Press(input.KeyOf(KeyboardDevice, 'x'))}; !slices.Equal(got.Events, want) {
		t.Errorf("Events = %v, want %v", got.Events, want)
	}
}

func TestPollerScreenShutdownTerminates(t *testing.T) {
	// Built by hand: the screen is finalised here, not in cleanup
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	p := NewPoller(screen, testOptions(engine.NewMockTimeProvider(epoch)))
	t.Cleanup(p.Stop)

	screen.Fini()
	collectUntilTerminate(t, p)

	if f := pollOnce(t, p, engine.PollWait); !f.Terminate {
		t.Error("Expected Terminate to persist after shutdown")
	}
}

func TestPollerRequestClose(t *testing.T) {
	_, p := newTestPoller(t, testOptions(engine.NewMockTimeProvider(epoch)))

	done := make(chan engine.Frame, 1)
	go func() {
		f, _ := p.Poll(engine.PollWait)
		done <- f
	}()

	p.RequestClose()
	p.RequestClose()

	select {
	case f := <-done:
		if !f.Terminate {
			t.Error("Expected Terminate after RequestClose")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PollWait did not wake on RequestClose")
	}
}

// TestPollerWaitWakesForRelease checks that a wait-mode poll returns when a release is due
func TestPollerWaitWakesForRelease(t *testing.T) {
	opts := testOptions(nil)
	opts.KeyRelease = 20 * time.Millisecond
	screen, p := newTestPoller(t, opts)
	a := input.KeyOf(KeyboardDevice, 'a')

	postKey(t, screen, tcell.KeyRune, 'a')
	collect(t, p, 1)

	deadline := time.Now().Add(2 * time.Second)
	for {
		f := pollOnce(t, p, engine.PollWait)
		if slices.Contains(f.Events, input.Release(a)) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("PollWait never reported the synthesised release")
		}
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	_, p := newTestPoller(t, testOptions(engine.NewMockTimeProvider(epoch)))
	p.Stop()
	p.Stop()

	if f := pollOnce(t, p, engine.PollBusy); !f.Terminate {
		t.Error("Expected Terminate once the pump has stopped")
	}
}

// TestPollerDrivesEngine runs a real loop until the callback observes a key
func TestPollerDrivesEngine(t *testing.T) {
	screen, p := newTestPoller(t, testOptions(nil))
	a := input.KeyOf(KeyboardDevice, 'a')

	var seen input.ButtonState
	eng, err := engine.NewBuilder().
		SetTPS(1000).
		SetWatchdogTime(time.Second).
		SetLogger(log.New(io.Discard, "", 0)).
		SetUpdateFunc(func(tick uint64, in input.View) engine.ControlFlow {
			if s := in.State(a); s.IsDown() {
				seen = s
				return engine.ControlExit
			}
			return engine.ControlRun
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	postKey(t, screen, tcell.KeyRune, 'a')

	report, err := eng.Run(p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Outcome != engine.OutcomeExited {
		t.Errorf("Outcome = %v, want %v", report.Outcome, engine.OutcomeExited)
	}
	if seen != input.Pressed(0) {
		t.Errorf("callback saw %v, want Pressed(0)", seen)
	}
}
