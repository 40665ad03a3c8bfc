package terminal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/BlueDragon92003/stirling-engine/input"
)

// keyToName maps tcell special keys to canonical config names
// Ctrl letters are filled in by init, except those in ctrlAliases
var keyToName = map[tcell.Key]string{
	tcell.KeyEscape:     "escape",
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "backtab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace2",
	tcell.KeyDelete:     "delete",

	tcell.KeyUp:     "up",
	tcell.KeyDown:   "down",
	tcell.KeyLeft:   "left",
	tcell.KeyRight:  "right",
	tcell.KeyHome:   "home",
	tcell.KeyEnd:    "end",
	tcell.KeyPgUp:   "page_up",
	tcell.KeyPgDn:   "page_down",
	tcell.KeyInsert: "insert",

	tcell.KeyF1:  "f1",
	tcell.KeyF2:  "f2",
	tcell.KeyF3:  "f3",
	tcell.KeyF4:  "f4",
	tcell.KeyF5:  "f5",
	tcell.KeyF6:  "f6",
	tcell.KeyF7:  "f7",
	tcell.KeyF8:  "f8",
	tcell.KeyF9:  "f9",
	tcell.KeyF10: "f10",
	tcell.KeyF11: "f11",
	tcell.KeyF12: "f12",

	tcell.KeyCtrlSpace: "ctrl_space",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]tcell.Key

// mouseNames labels the MouseDevice button codes
var mouseNames = map[uint32]string{
	MousePrimary:   "mouse_primary",
	MouseSecondary: "mouse_secondary",
	MouseMiddle:    "mouse_middle",
}

// ctrlAliases are ctrl letters the terminal reports as their control-character key
var ctrlAliases = map[rune]tcell.Key{
	'h': tcell.KeyBackspace,
	'i': tcell.KeyTab,
	'j': tcell.KeyEnter,
	'm': tcell.KeyEnter,
}

func init() {
	for k := tcell.KeyCtrlA; k <= tcell.KeyCtrlZ; k++ {
		letter := rune('a' + k - tcell.KeyCtrlA)
		if _, aliased := ctrlAliases[letter]; aliased {
			continue
		}
		if _, taken := keyToName[k]; !taken {
			keyToName[k] = "ctrl_" + string(letter)
		}
	}

	nameToKey = make(map[string]tcell.Key, len(keyToName)+len(ctrlAliases)+2)
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = tcell.KeyEscape
	nameToKey["shift_tab"] = tcell.KeyBacktab
	for letter, k := range ctrlAliases {
		nameToKey["ctrl_"+string(letter)] = k
	}
}

// KeySpec selects one terminal key: a special key, or KeyRune with a character
type KeySpec struct {
	Key  tcell.Key
	Rune rune
}

// Matches reports whether ev is the key described by s
func (s KeySpec) Matches(ev *tcell.EventKey) bool {
	if ev.Key() != s.Key {
		return false
	}
	return s.Key != tcell.KeyRune || ev.Rune() == s.Rune
}

// String returns the config name of the key
func (s KeySpec) String() string {
	if s.Key == tcell.KeyRune {
		return runeName(s.Rune)
	}
	if name, ok := keyToName[s.Key]; ok {
		return name
	}
	return fmt.Sprintf("key_%d", s.Key)
}

// KeyName returns the canonical name of a tcell special key, empty if unnamed
func KeyName(k tcell.Key) string {
	return keyToName[k]
}

// ParseKeyName resolves a config name: a named key, "space", or a single character
func ParseKeyName(name string) (KeySpec, error) {
	if name == "space" {
		return KeySpec{Key: tcell.KeyRune, Rune: ' '}, nil
	}
	if k, ok := nameToKey[strings.ToLower(name)]; ok {
		return KeySpec{Key: k}, nil
	}
	if r, size := utf8.DecodeRuneInString(name); r != utf8.RuneError && size == len(name) {
		return KeySpec{Key: tcell.KeyRune, Rune: r}, nil
	}
	return KeySpec{}, fmt.Errorf("terminal: unknown key name %q", name)
}

// ParseKeyNames resolves a list of config names, stopping at the first unknown one
func ParseKeyNames(names []string) ([]KeySpec, error) {
	specs := make([]KeySpec, 0, len(names))
	for _, name := range names {
		spec, err := ParseKeyName(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ButtonName labels an identity produced by Poller
// Identities from other sources fall back to their generic form
func ButtonName(id input.ButtonIdentity) string {
	switch {
	case id.Device == KeyboardDevice && id.Kind == input.KindKey:
		if id.Code >= specialKeyBase {
			return KeySpec{Key: tcell.Key(id.Code - specialKeyBase)}.String()
		}
		return runeName(rune(id.Code))
	case id.Device == MouseDevice && id.Kind == input.KindButton:
		if name, ok := mouseNames[id.Code]; ok {
			return name
		}
	}
	return id.String()
}

func runeName(r rune) string {
	if r == ' ' {
		return "space"
	}
	return string(r)
}
