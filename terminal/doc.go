// Package terminal hosts the run loop on a tcell screen.
//
// Poller turns tcell key and mouse events into raw press/release events:
//   - Keys arrive on KeyboardDevice. Terminals never report key-up, so a
//     release is synthesised once a key has gone quiet for Options.KeyRelease.
//   - Mouse buttons arrive on MouseDevice as ButtonMask transitions.
//   - Quit keys, RequestClose and screen shutdown end the loop with Frame.Terminate.
//
// Poller never draws; rendering stays with the caller.
package terminal
