//go:build !linux

package sysfs

import "errors"

// DefaultRoot is where Linux exposes PWM chips.
const DefaultRoot = "/sys/class/pwm"

// Config matches the Linux Config so callers build on every platform.
type Config struct {
	Root      string
	Chip      int
	Channel   int
	Frequency float64
	DutyCycle float64
	Inverted  bool
}

// Carrier is unavailable outside Linux.
type Carrier struct{}

var errUnsupported = errors.New("sysfs pwm is only available on linux")

// Open always fails outside Linux.
func Open(Config) (*Carrier, error) { return nil, errUnsupported }

// Enable always fails outside Linux.
func (*Carrier) Enable() error { return errUnsupported }

// Disable always fails outside Linux.
func (*Carrier) Disable() error { return errUnsupported }

// Close does nothing.
func (*Carrier) Close() error { return nil }
