// Package irremote transmits infrared remote-control signals by switching a
// PWM carrier on and off with the timings of a configurable IR protocol.
//
// A RemoteConfig describes one remote: a timing table (header, one, zero,
// gap), a bit width, a device address and a list of named codes. A Remote
// resolves a signal name to its code, marshals it into frames of TimePairs
// and hands them to a Transmitter, usually a TxDevice driving a Carrier.
package irremote

import "time"

const (
	// Freq38Khz is the most commonly used frequency for IR remotes
	Freq38Khz = 38000
)

// TimePair encodes two durations: how long the carrier is on, then how long it is off.
type TimePair [2]time.Duration

// On returns how long the carrier is enabled.
func (p TimePair) On() time.Duration { return p[0] }

// Off returns how long the carrier is disabled after the on phase.
func (p TimePair) Off() time.Duration { return p[1] }

// FrameMarshaller defines an interface for marshalling data to slice of TimePairs
type FrameMarshaller interface {
	MarshalFrame() []TimePair
}

// Transmitter puts frames on the air. Implementations must not interleave
// the pairs of two concurrent SendFrames calls.
type Transmitter interface {
	SendFrames(fms ...FrameMarshaller) error
	Close() error
}

// Carrier is a single PWM channel, already configured with its frequency,
// duty cycle and polarity.
type Carrier interface {
	Enable() error
	Disable() error
	Close() error
}

// Sleeper blocks the calling goroutine for at least d.
type Sleeper interface {
	Sleep(d time.Duration)
}
