package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BlueDragon92003/stirling-engine/engine"
	"github.com/BlueDragon92003/stirling-engine/input"
	"github.com/BlueDragon92003/stirling-engine/status"
	"github.com/BlueDragon92003/stirling-engine/terminal"
)

// heatTicks is the hold length at which a button is drawn fully red
const heatTicks = 100

var (
	titleStyle = tcell.StyleDefault.Bold(true)
	dimStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// tour is the demo's update callback: it redraws the screen every tick
type tour struct {
	screen    tcell.Screen
	status    *status.Registry
	limit     uint64
	idlePause bool
	printer   *message.Printer
	quitHint  string
}

func newTour(limit uint64, idlePause bool) *tour {
	return &tour{
		limit:     limit,
		idlePause: idlePause,
		printer:   message.NewPrinter(language.English),
	}
}

// attach sets the draw target; a tour without a screen only decides control flow
func (t *tour) attach(screen tcell.Screen, reg *status.Registry, quit []terminal.KeySpec) {
	t.screen = screen
	t.status = reg
	t.quitHint = ""
	for i, k := range quit {
		if i > 0 {
			t.quitHint += " / "
		}
		t.quitHint += k.String()
	}
}

// Update implements engine.Updater
func (t *tour) Update(tick uint64, in input.View) engine.ControlFlow {
	active := in.ActiveButtons()
	if t.screen != nil {
		t.draw(tick, in, active)
	}

	if t.limit > 0 && tick >= t.limit {
		return engine.ControlExit
	}
	if t.idlePause && len(active) == 0 {
		return engine.ControlPause
	}
	return engine.ControlRun
}

func (t *tour) draw(tick uint64, in input.View, active []input.ButtonIdentity) {
	t.screen.Clear()
	row := 0

	t.text(0, row, titleStyle, t.printer.Sprintf("stirling tour  tick %d", tick))
	row++
	if t.quitHint != "" {
		t.text(0, row, dimStyle, "quit: "+t.quitHint)
	}
	row += 2

	if len(active) == 0 {
		t.text(0, row, dimStyle, "press keys or mouse buttons")
		row++
	}
	for _, id := range active {
		state := in.State(id)
		t.text(0, row, stateStyle(state), fmt.Sprintf("%-16s %v", terminal.ButtonName(id), state))
		row++
	}
	row++

	if t.status != nil {
		for _, line := range t.status.Lines() {
			t.text(0, row, dimStyle, line)
			row++
		}
	}

	t.screen.Show()
}

// text draws s from (x, y), clipped to the screen
func (t *tour) text(x, y int, style tcell.Style, s string) {
	w, h := t.screen.Size()
	if y >= h {
		return
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > w {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x += max(rw, 1)
	}
}

// stateStyle colours a state: green when pressed, shading to red the longer it is held
func stateStyle(s input.ButtonState) tcell.Style {
	var c colorful.Color
	switch s.Phase {
	case input.PhasePressed:
		c = colorful.Hsv(120, 0.7, 0.95)
	case input.PhaseHeld:
		heat := math.Min(float64(s.Ticks)/heatTicks, 1)
		c = colorful.Hsv(120*(1-heat), 0.7, 0.95)
	case input.PhaseReleased:
		c = colorful.Hsv(210, 0.5, 0.9)
	default:
		return dimStyle
	}
	r, g, b := c.RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
