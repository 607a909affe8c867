package irremote

import (
	"fmt"
	"sort"
	"strings"
)

// preset is the timing half of a RemoteConfig for a known protocol family.
// Values are still sent MSB first, so codes copied from an LSB-first
// protocol description have to be given bit-reversed.
type preset struct {
	bits      uint8
	header    Bits
	one       Bits
	zero      Bits
	gap       Bits
	frequency float64
	repeat    uint8
}

var presets = map[string]preset{
	// 8 bit address + inverted address, 8 bit command + inverted command.
	// The gap is the stop mark followed by the rest of the 108ms frame.
	"nec": {
		bits:      16,
		header:    Bits{9000, 4500},
		one:       Bits{562, 1687},
		zero:      Bits{562, 562},
		gap:       Bits{562, 40000},
		frequency: Freq38Khz,
		repeat:    1,
	},
	"samsung": {
		bits:      16,
		header:    Bits{4500, 4500},
		one:       Bits{562, 1687},
		zero:      Bits{562, 562},
		gap:       Bits{562, 47000},
		frequency: Freq38Khz,
		repeat:    1,
	},
}

// Presets returns the names accepted in the protocol field.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *RemoteConfig) applyPreset() error {
	if c.Protocol == "" {
		return nil
	}
	p, ok := presets[strings.ToLower(c.Protocol)]
	if !ok {
		return fmt.Errorf("unknown protocol %q (available: %v)", c.Protocol, Presets())
	}
	if c.Bits == 0 {
		c.Bits = p.bits
	}
	for _, f := range []struct {
		dst *Bits
		src Bits
	}{
		{&c.Header, p.header},
		{&c.One, p.one},
		{&c.Zero, p.zero},
		{&c.Gap, p.gap},
	} {
		if f.dst.isZero() {
			*f.dst = f.src
		}
	}
	if c.Frequency == 0 {
		c.Frequency = p.frequency
	}
	if c.Repeat == 0 {
		c.Repeat = p.repeat
	}
	return nil
}
