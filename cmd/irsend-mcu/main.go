//go:build tinygo && rp2040

// irsend-mcu is firmware for an RP2040 board with an IR LED on GPIO15. It
// reads signal names, one per line, from the USB serial console and
// transmits them with a built-in NEC remote table.
package main

import (
	"machine"
	"time"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/machinepwm"
)

const irPin = machine.GPIO15

var remote = irremote.RemoteConfig{
	Name:      "tv",
	Bits:      16,
	Header:    irremote.Bits{9000, 4500},
	One:       irremote.Bits{562, 1687},
	Zero:      irremote.Bits{562, 562},
	Gap:       irremote.Bits{562, 40000},
	Repeat:    1,
	Frequency: irremote.Freq38Khz,
	Address:   0x20DF,
	Codes: []irremote.Code{
		{Signal: "power", Code: 0x10EF},
		{Signal: "mute", Code: 0x906F},
		{Signal: "volume_up", Code: 0x40BF},
		{Signal: "volume_down", Code: 0xC03F},
	},
}

func main() {
	time.Sleep(time.Second)

	carrier, err := machinepwm.New(irPin, irremote.Freq38Khz, 0.5)
	if err != nil {
		println("pwm:", err.Error())
		return
	}
	// time.Sleep on the RP2040 is timer-interrupt driven and already
	// microsecond accurate; spinning would only burn power.
	tx := irremote.NewTxDevice(carrier, irremote.WithSleeper(sleeper{}))
	r := irremote.New(&remote, tx)

	var line []byte
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		b, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}
		if b != '\n' && b != '\r' {
			line = append(line, b)
			continue
		}
		if len(line) == 0 {
			continue
		}
		if err := r.Transmit(string(line)); err != nil {
			println("error:", err.Error())
		} else {
			println("ok")
		}
		line = line[:0]
	}
}

type sleeper struct{}

func (sleeper) Sleep(d time.Duration) { time.Sleep(d) }
