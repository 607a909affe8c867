// Package rpipwm keys the Raspberry Pi's hardware PWM through go-rpio.
//
// The PWM block runs in mark/space mode. The carrier frequency is the
// oscillator divided by an integer clock divisor and then by the cycle
// length, so Open picks the pair that lands closest to the requested
// frequency. Only the BCM pins wired to a PWM channel (12, 13, 18, 19 and
// their alternates) work.
package rpipwm

import (
	"fmt"
	"math"

	"github.com/stianeikeland/go-rpio/v4"
)

// Oscillator frequencies go-rpio divides down for the PWM clock.
const (
	Oscillator    = 19200000 // BCM2835-BCM2837
	OscillatorPi4 = 52000000 // BCM2711
)

// Bounds on PWM clock ticks per carrier period. The lower bound keeps
// duty cycle resolution usable.
const (
	minCycle = 16
	maxCycle = 256
)

// pwmPin is the part of rpio.Pin the carrier uses.
type pwmPin interface {
	DutyCycleWithPwmMode(dutyLen, cycleLen uint32, mode bool)
}

// Config selects and configures the pin.
type Config struct {
	Pin       int
	Frequency float64
	DutyCycle float64
	Inverted  bool

	// Oscillator is the PWM clock source in Hz, Oscillator if zero. Set
	// it to OscillatorPi4 on a Raspberry Pi 4. The carrier is within 0.1%
	// of Frequency for the usual 36-56kHz IR carriers.
	Oscillator int
}

// Carrier is a configured PWM pin.
type Carrier struct {
	pin      pwmPin
	cycle    uint32
	on, off  uint32
	closeMem func() error
}

// Open maps the GPIO registers and puts cfg.Pin in PWM mode, disabled.
func Open(cfg Config) (*Carrier, error) {
	if !(cfg.Frequency > 0) {
		return nil, fmt.Errorf("invalid frequency %v", cfg.Frequency)
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio open: %w", err)
	}
	osc := cfg.Oscillator
	if osc == 0 {
		osc = Oscillator
	}
	clock, cycle := clockFor(osc, cfg.Frequency)

	pin := rpio.Pin(cfg.Pin)
	pin.Mode(rpio.Pwm)
	pin.Freq(clock)

	c := newCarrier(pin, cycle, cfg.DutyCycle, cfg.Inverted)
	c.closeMem = rpio.Close
	if err := c.Disable(); err != nil {
		rpio.Close()
		return nil, err
	}
	return c, nil
}

// clockFor returns the PWM clock and cycle length whose carrier is closest
// to freq. The clock is osc divided by a whole number, which keeps
// go-rpio's fractional divider (and its jitter) out of use.
func clockFor(osc int, freq float64) (clock int, cycle uint32) {
	bestErr := math.Inf(1)
	for c := minCycle; c <= maxCycle; c++ {
		div := int(math.Round(float64(osc) / (freq * float64(c))))
		if div < 2 {
			continue
		}
		got := float64(osc) / float64(div*c)
		if e := math.Abs(got - freq); e < bestErr {
			bestErr, clock, cycle = e, osc/div, uint32(c)
		}
	}
	if cycle == 0 {
		// freq is too high for the clock; run as fast as it allows.
		return osc / 2, minCycle
	}
	return clock, cycle
}

func newCarrier(pin pwmPin, cycle uint32, duty float64, inverted bool) *Carrier {
	mark := uint32(math.Round(duty * float64(cycle)))
	if mark > cycle {
		mark = cycle
	}
	c := &Carrier{pin: pin, cycle: cycle, on: mark, off: 0}
	if inverted {
		c.on, c.off = cycle-mark, cycle
	}
	return c
}

// Enable starts the carrier.
func (c *Carrier) Enable() error {
	c.pin.DutyCycleWithPwmMode(c.on, c.cycle, rpio.MarkSpace)
	return nil
}

// Disable holds the pin at its idle level.
func (c *Carrier) Disable() error {
	c.pin.DutyCycleWithPwmMode(c.off, c.cycle, rpio.MarkSpace)
	return nil
}

// Close disables the carrier and unmaps the registers.
func (c *Carrier) Close() error {
	c.Disable()
	if c.closeMem == nil {
		return nil
	}
	closeMem := c.closeMem
	c.closeMem = nil
	return closeMem()
}
