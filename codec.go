package irremote

import "time"

// Frame is one header, address, code, gap sequence.
type Frame struct {
	Bits    uint8
	Header  TimePair
	One     TimePair
	Zero    TimePair
	Gap     TimePair
	Address uint32
	Code    uint32
}

// Frame builds the frame that carries code under c's timing and address.
func (c *RemoteConfig) Frame(code uint32) Frame {
	return Frame{
		Bits:    c.Bits,
		Header:  c.Header.Pair(),
		One:     c.One.Pair(),
		Zero:    c.Zero.Pair(),
		Gap:     c.Gap.Pair(),
		Address: c.Address,
		Code:    code,
	}
}

// MarshalFrame implements FrameMarshaller. Address and code are sent MSB
// first; bits above f.Bits are dropped.
func (f Frame) MarshalFrame() []TimePair {
	out := make([]TimePair, 0, 2+2*int(f.Bits))
	out = append(out, f.Header)
	out = f.appendData(out, f.Address)
	out = f.appendData(out, f.Code)
	return append(out, f.Gap)
}

func (f Frame) appendData(out []TimePair, value uint32) []TimePair {
	bits := uint32(f.Bits)
	for n := uint32(0); n < bits; n++ {
		if (value>>(bits-n-1))&1 == 1 {
			out = append(out, f.One)
		} else {
			out = append(out, f.Zero)
		}
	}
	return out
}

// Duration is the air time of one frame, off phases included.
func (f Frame) Duration() time.Duration {
	var d time.Duration
	for _, p := range f.MarshalFrame() {
		d += p.On() + p.Off()
	}
	return d
}
