//go:build tinygo

// Package machinepwm keys a microcontroller PWM pin as an irremote.Carrier
// under TinyGo.
package machinepwm

import (
	. "machine"

	"github.com/sparques/pwm"
)

// Carrier is one PWM channel of a pin's PWM group.
type Carrier struct {
	pin    Pin
	pgroup pwm.Group
	ch     uint8
	duty   uint32
}

// New configures pin for PWM at freq Hz with the given duty cycle, carrier off.
func New(pin Pin, freq uint64, duty float64) (*Carrier, error) {
	pin.Configure(PinConfig{Mode: PinPWM})
	pgroup := pwm.Get(pin)
	pgroup.Configure(PWMConfig{Period: uint64(1e9) / freq})
	ch, err := pgroup.Channel(pin)
	if err != nil {
		return nil, err
	}
	pgroup.Set(ch, 0)
	return &Carrier{
		pin:    pin,
		pgroup: pgroup,
		ch:     ch,
		duty:   uint32(float64(pgroup.Top()) * duty),
	}, nil
}

// Enable drives the channel at the configured duty cycle.
func (c *Carrier) Enable() error {
	c.pgroup.Set(c.ch, c.duty)
	return nil
}

// Disable holds the channel low.
func (c *Carrier) Disable() error {
	c.pgroup.Set(c.ch, 0)
	return nil
}

// Close leaves the channel low. The PWM peripheral stays configured.
func (c *Carrier) Close() error {
	c.pgroup.Set(c.ch, 0)
	return nil
}
