package terminal

import (
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/BlueDragon92003/stirling-engine/core"
	"github.com/BlueDragon92003/stirling-engine/engine"
	"github.com/BlueDragon92003/stirling-engine/input"
)

// Devices reported by Poller
const (
	KeyboardDevice input.DeviceID = 0
	MouseDevice    input.DeviceID = 1
)

// Mouse button codes on MouseDevice
const (
	MousePrimary   uint32 = 1
	MouseSecondary uint32 = 2
	MouseMiddle    uint32 = 3
)

// specialKeyBase lifts tcell special keys above the Unicode range so their codes never collide with runes
const specialKeyBase uint32 = utf8.MaxRune + 1

// eventBuffer sizes the channel between the pump goroutine and Poll
const eventBuffer = 256

var mouseButtons = []struct {
	mask tcell.ButtonMask
	code uint32
}{
	{tcell.Button1, MousePrimary},
	{tcell.Button2, MouseSecondary},
	{tcell.Button3, MouseMiddle},
}

const trackedButtons = tcell.Button1 | tcell.Button2 | tcell.Button3

// KeyIdentity returns the identity Poller reports for a key event
func KeyIdentity(ev *tcell.EventKey) input.ButtonIdentity {
	if ev.Key() == tcell.KeyRune {
		return input.KeyOf(KeyboardDevice, uint32(ev.Rune()))
	}
	return input.KeyOf(KeyboardDevice, specialKeyBase+uint32(ev.Key()))
}

// Poller adapts a tcell screen to engine.Poller
// Poll is called from the run loop goroutine only
type Poller struct {
	screen tcell.Screen
	opts   Options

	events    chan tcell.Event
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeCh   chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once

	// Loop goroutine state
	held    map[input.ButtonIdentity]time.Time
	buttons tcell.ButtonMask
	closed  bool
}

// NewPoller starts pumping events from an initialised screen
// The screen stays owned by the caller; Fini after Stop
func NewPoller(screen tcell.Screen, opts Options) *Poller {
	opts.normalize()
	if opts.Mouse {
		screen.EnableMouse()
	}

	p := &Poller{
		screen:  screen,
		opts:    opts,
		events:  make(chan tcell.Event, eventBuffer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		closeCh: make(chan struct{}),
		held:    make(map[input.ButtonIdentity]time.Time),
	}
	core.Go(p.pump)
	return p
}

// pump forwards screen events until the screen is finalised or Stop is called
func (p *Poller) pump() {
	defer close(p.doneCh)
	defer close(p.events)

	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}

		select {
		case <-p.stopCh:
			return
		default:
		}

		select {
		case p.events <- ev:
		case <-p.stopCh:
			return
		}
	}
}

// Stop ends the pump goroutine and waits for it
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		// Wake PollEvent; a full queue wakes it anyway
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
		<-p.doneCh
	})
}

// RequestClose makes the next Poll report Terminate; safe from any goroutine
func (p *Poller) RequestClose() {
	p.closeOnce.Do(func() { close(p.closeCh) })
}

// Held returns the number of keys awaiting a synthesised release
func (p *Poller) Held() int {
	return len(p.held)
}

// Poll implements engine.Poller
// PollBusy waits at most PollInterval for the first event; PollWait blocks until
// an event, a close request, or the next synthesised release is due
func (p *Poller) Poll(mode engine.PollMode) (engine.Frame, error) {
	var frame engine.Frame

	for ev := p.wait(mode); ev != nil; ev = p.next() {
		p.handle(ev, &frame)
	}
	p.releaseQuiet(&frame)

	select {
	case <-p.closeCh:
		p.closed = true
	default:
	}
	if p.closed {
		frame.Terminate = true
	}
	return frame, nil
}

// wait returns the first event of a frame, nil if none arrived in time
func (p *Poller) wait(mode engine.PollMode) tcell.Event {
	if p.closed {
		return nil
	}

	var d time.Duration
	switch {
	case mode == engine.PollWait:
		next, ok := p.nextRelease()
		if !ok {
			return p.block(nil)
		}
		d = next
	case p.opts.PollInterval > 0:
		d = p.opts.PollInterval
	default:
		return p.next()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	return p.block(timer.C)
}

// block waits for an event, a close request, or timeout; a nil timeout never fires
func (p *Poller) block(timeout <-chan time.Time) tcell.Event {
	select {
	case ev, ok := <-p.events:
		return p.received(ev, ok)
	case <-p.closeCh:
		return nil
	case <-timeout:
		return nil
	}
}

// next returns a queued event without blocking
func (p *Poller) next() tcell.Event {
	if p.closed {
		return nil
	}
	select {
	case ev, ok := <-p.events:
		return p.received(ev, ok)
	default:
		return nil
	}
}

func (p *Poller) received(ev tcell.Event, ok bool) tcell.Event {
	if !ok {
		p.closed = true
		return nil
	}
	return ev
}

func (p *Poller) handle(ev tcell.Event, frame *engine.Frame) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		p.handleKey(ev, frame)
	case *tcell.EventMouse:
		if p.opts.Mouse {
			p.handleMouse(ev, frame)
		}
	}
}

func (p *Poller) handleKey(ev *tcell.EventKey, frame *engine.Frame) {
	for _, q := range p.opts.QuitKeys {
		if q.Matches(ev) {
			frame.Terminate = true
			return
		}
	}

	id := KeyIdentity(ev)
	frame.Events = append(frame.Events, input.Press(id))
	p.held[id] = p.opts.Clock.Now()
}

// handleMouse reports transitions of the tracked buttons
func (p *Poller) handleMouse(ev *tcell.EventMouse, frame *engine.Frame) {
	mask := ev.Buttons() & trackedButtons
	changed := mask ^ p.buttons
	p.buttons = mask

	for _, b := range mouseButtons {
		if changed&b.mask == 0 {
			continue
		}
		id := input.ButtonOf(MouseDevice, b.code)
		if mask&b.mask != 0 {
			frame.Events = append(frame.Events, input.Press(id))
		} else {
			frame.Events = append(frame.Events, input.Release(id))
		}
	}
}

// releaseQuiet synthesises releases for keys silent for at least KeyRelease
func (p *Poller) releaseQuiet(frame *engine.Frame) {
	if len(p.held) == 0 {
		return
	}

	now := p.opts.Clock.Now()
	var released []input.ButtonIdentity
	for id, last := range p.held {
		if now.Sub(last) >= p.opts.KeyRelease {
			released = append(released, id)
			delete(p.held, id)
		}
	}

	slices.SortFunc(released, input.ButtonIdentity.Compare)
	for _, id := range released {
		frame.Events = append(frame.Events, input.Release(id))
	}
}

// nextRelease returns the time until the earliest synthesised release
func (p *Poller) nextRelease() (time.Duration, bool) {
	if len(p.held) == 0 {
		return 0, false
	}

	var earliest time.Time
	for _, last := range p.held {
		if earliest.IsZero() || last.Before(earliest) {
			earliest = last
		}
	}
	return max(earliest.Add(p.opts.KeyRelease).Sub(p.opts.Clock.Now()), 0), true
}
