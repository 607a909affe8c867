// Package driver opens the Transmitter a RemoteConfig asks for.
package driver

import (
	"fmt"
	"log/slog"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/rpipwm"
	"github.com/sparques/irremote/serialblaster"
	"github.com/sparques/irremote/sysfs"
)

// Open configures the PWM collaborator described by cfg.Transmitter at
// cfg.Frequency. Failures wrap irremote.ErrPWMInit.
func Open(cfg *irremote.RemoteConfig, log *slog.Logger) (irremote.Transmitter, error) {
	t := cfg.Transmitter
	log = log.With("driver", t.Driver)

	var carrier irremote.Carrier
	switch t.Driver {
	case irremote.DriverSysfs:
		c, err := sysfs.Open(sysfs.Config{
			Chip:      t.Chip,
			Channel:   t.Channel,
			Frequency: cfg.Frequency,
			DutyCycle: t.DutyCycle,
			Inverted:  t.Inverted(),
		})
		if err != nil {
			return nil, irremote.NewPWMError(irremote.ErrPWMInit, "sysfs", err)
		}
		log.Debug("pwm channel ready", "chip", t.Chip, "channel", t.Channel)
		carrier = c
	case irremote.DriverRpio:
		c, err := rpipwm.Open(rpipwm.Config{
			Pin:        t.Pin,
			Frequency:  cfg.Frequency,
			DutyCycle:  t.DutyCycle,
			Inverted:   t.Inverted(),
			Oscillator: t.Oscillator,
		})
		if err != nil {
			return nil, irremote.NewPWMError(irremote.ErrPWMInit, "rpio", err)
		}
		log.Debug("pwm pin ready", "pin", t.Pin)
		carrier = c
	case irremote.DriverSerial:
		b, err := serialblaster.Open(serialblaster.Config{
			Device:    t.Device,
			Baud:      t.Baud,
			Frequency: cfg.Frequency,
			DutyCycle: t.DutyCycle,
		})
		if err != nil {
			return nil, irremote.NewPWMError(irremote.ErrPWMInit, "serial", err)
		}
		log.Debug("serial blaster ready", "device", t.Device, "baud", t.Baud)
		return b, nil
	default:
		return nil, irremote.NewPWMError(irremote.ErrPWMInit, "open", fmt.Errorf("unknown driver %q", t.Driver))
	}
	return irremote.NewTxDevice(carrier, irremote.WithTxLogger(log)), nil
}
