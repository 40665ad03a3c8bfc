package terminal

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/BlueDragon92003/stirling-engine/config"
	"github.com/BlueDragon92003/stirling-engine/engine"
)

const (
	// DefaultKeyRelease covers the initial autorepeat delay of common terminals
	DefaultKeyRelease = 150 * time.Millisecond
	// DefaultPollInterval bounds how long a busy poll waits for input
	DefaultPollInterval = time.Millisecond
)

// Options tunes a Poller
type Options struct {
	// KeyRelease is the silence after which a held key is reported released
	KeyRelease time.Duration
	// PollInterval is the longest a PollBusy call waits; zero never blocks
	PollInterval time.Duration
	// QuitKeys raise Frame.Terminate instead of producing input
	QuitKeys []KeySpec
	// Mouse enables mouse reporting on MouseDevice
	Mouse bool
	// Clock stamps key presses; nil selects the monotonic clock
	Clock engine.TimeProvider
}

// DefaultOptions returns the host defaults: escape and ctrl_c quit, mouse on
func DefaultOptions() Options {
	return Options{
		KeyRelease:   DefaultKeyRelease,
		PollInterval: DefaultPollInterval,
		QuitKeys: []KeySpec{
			{Key: tcell.KeyEscape},
			{Key: tcell.KeyCtrlC},
		},
		Mouse: true,
	}
}

// ApplyConfig overlays the fields set in c
func (o *Options) ApplyConfig(c config.TerminalConfig) error {
	if c.KeyRelease < 0 || c.PollInterval < 0 {
		return errors.New("terminal: negative duration in config")
	}
	if c.KeyRelease > 0 {
		o.KeyRelease = c.KeyRelease
	}
	if c.PollInterval > 0 {
		o.PollInterval = c.PollInterval
	}
	if len(c.QuitKeys) > 0 {
		keys, err := ParseKeyNames(c.QuitKeys)
		if err != nil {
			return err
		}
		o.QuitKeys = keys
	}
	if c.Mouse != nil {
		o.Mouse = *c.Mouse
	}
	return nil
}

func (o *Options) normalize() {
	if o.KeyRelease <= 0 {
		o.KeyRelease = DefaultKeyRelease
	}
	if o.PollInterval < 0 {
		o.PollInterval = 0
	}
	if o.Clock == nil {
		o.Clock = engine.NewMonotonicTimeProvider()
	}
}
