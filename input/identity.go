package input

import (
	"cmp"
	"fmt"
)

// DeviceID identifies a physical input device as reported by the host
type DeviceID uint32

// ControlKind tells how a ButtonIdentity's Code is interpreted
type ControlKind uint8

const (
	KindKey      ControlKind = iota // Virtual key code
	KindButton                      // Mouse or gamepad button code
	KindScanCode                    // Raw keyboard scan code
)

// String returns the kind name
func (k ControlKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindButton:
		return "button"
	case KindScanCode:
		return "scancode"
	default:
		return "unknown"
	}
}

// ButtonIdentity names one physical control on one device
// Comparable, used directly as a map key
type ButtonIdentity struct {
	Device DeviceID
	Kind   ControlKind
	Code   uint32
}

// KeyOf returns the identity of a virtual key on a device
func KeyOf(device DeviceID, code uint32) ButtonIdentity {
	return ButtonIdentity{Device: device, Kind: KindKey, Code: code}
}

// ButtonOf returns the identity of a mouse or gamepad button on a device
func ButtonOf(device DeviceID, code uint32) ButtonIdentity {
	return ButtonIdentity{Device: device, Kind: KindButton, Code: code}
}

// ScanCodeOf returns the identity of a raw scan code on a device
func ScanCodeOf(device DeviceID, code uint32) ButtonIdentity {
	return ButtonIdentity{Device: device, Kind: KindScanCode, Code: code}
}

// String formats the identity as kind(device:code)
func (b ButtonIdentity) String() string {
	return fmt.Sprintf("%s(%d:%d)", b.Kind, b.Device, b.Code)
}

// Compare orders identities by device, kind, then code
func (b ButtonIdentity) Compare(o ButtonIdentity) int {
	if c := cmp.Compare(b.Device, o.Device); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(b.Code, o.Code)
}

// Event is one raw press or release reported by a device
type Event struct {
	Button  ButtonIdentity
	Pressed bool
}

// Press returns a press event for id
func Press(id ButtonIdentity) Event { return Event{Button: id, Pressed: true} }

// Release returns a release event for id
func Release(id ButtonIdentity) Event { return Event{Button: id, Pressed: false} }
