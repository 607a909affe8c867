// Package serialblaster hands frames to an external IR blaster on a serial
// line instead of keying a carrier from the host.
//
// Each frame is one line of JSON in the raw-frame format used by IR
// capture tools: durations in units of resolution microseconds, one
// [on, off] pair per symbol.
//
//	{"frequency":38000,"duty_cycle":0.5,"resolution":1,"data":[[9000,4500],[562,1687],...]}
//
// The blaster is expected to play each line back on its own carrier.
package serialblaster

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/sparques/irremote"
)

// Config describes the serial line and the carrier the blaster should use.
type Config struct {
	Device    string
	Baud      int
	Frequency float64
	DutyCycle float64
}

type rawFrame struct {
	Frequency  float64     `json:"frequency"`
	DutyCycle  float64     `json:"duty_cycle"`
	Resolution int         `json:"resolution"`
	Data       [][2]uint32 `json:"data"`
}

// Blaster is an irremote.Transmitter writing to a serial IR blaster.
type Blaster struct {
	mu   sync.Mutex
	w    io.Writer
	c    io.Closer
	freq float64
	duty float64
}

// Open opens the serial device.
func Open(cfg Config) (*Blaster, error) {
	port, err := serial.OpenPort(&serial.Config{Name: cfg.Device, Baud: cfg.Baud, ReadTimeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	b := New(port, cfg.Frequency, cfg.DutyCycle)
	b.c = port
	return b, nil
}

// New returns a Blaster writing frames to w.
func New(w io.Writer, frequency, duty float64) *Blaster {
	return &Blaster{w: w, freq: frequency, duty: duty}
}

// SendFrames writes one line per frame. Frames of concurrent calls are not interleaved.
func (b *Blaster) SendFrames(fms ...irremote.FrameMarshaller) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, fm := range fms {
		pairs := fm.MarshalFrame()
		f := rawFrame{
			Frequency:  b.freq,
			DutyCycle:  b.duty,
			Resolution: 1,
			Data:       make([][2]uint32, len(pairs)),
		}
		for i, p := range pairs {
			f.Data[i] = [2]uint32{uint32(p.On().Microseconds()), uint32(p.Off().Microseconds())}
		}
		line, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if _, err := b.w.Write(append(line, '\n')); err != nil {
			return irremote.NewPWMError(irremote.ErrPWMIO, "write", err)
		}
	}
	return nil
}

// Close closes the serial port, if Open opened one.
func (b *Blaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.c == nil {
		return nil
	}
	c := b.c
	b.c = nil
	return c.Close()
}
