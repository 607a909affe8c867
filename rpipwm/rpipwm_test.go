package rpipwm

import (
	"math"
	"testing"
)

type fakePin struct {
	duty, cycle []uint32
	modes       []bool
}

func (p *fakePin) DutyCycleWithPwmMode(dutyLen, cycleLen uint32, mode bool) {
	p.duty = append(p.duty, dutyLen)
	p.cycle = append(p.cycle, cycleLen)
	p.modes = append(p.modes, mode)
}

func TestCarrierLevels(t *testing.T) {
	tests := []struct {
		name     string
		duty     float64
		inverted bool
		on, off  uint32
	}{
		{"half", 0.5, false, 16, 0},
		{"third", 0.33, false, 11, 0},
		{"inverted half", 0.5, true, 16, 32},
		{"inverted quarter", 0.25, true, 24, 32},
		{"full", 1, false, 32, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pin := &fakePin{}
			c := newCarrier(pin, 32, tt.duty, tt.inverted)
			if err := c.Enable(); err != nil {
				t.Fatal(err)
			}
			if err := c.Disable(); err != nil {
				t.Fatal(err)
			}
			if pin.duty[0] != tt.on || pin.duty[1] != tt.off {
				t.Errorf("duty = %v, want [%d %d]", pin.duty, tt.on, tt.off)
			}
			for i, cl := range pin.cycle {
				if cl != 32 {
					t.Errorf("cycle[%d] = %d, want 32", i, cl)
				}
				if pin.modes[i] {
					t.Errorf("mode[%d] balanced, want mark/space", i)
				}
			}
		})
	}
}

func TestCloseDisables(t *testing.T) {
	pin := &fakePin{}
	c := newCarrier(pin, 32, 0.5, false)
	c.Enable()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if last := pin.duty[len(pin.duty)-1]; last != 0 {
		t.Errorf("duty after Close = %d, want 0", last)
	}
}

func TestClockFor(t *testing.T) {
	tests := []struct {
		osc   int
		freq  float64
		clock int
		cycle uint32
	}{
		{Oscillator, 38000, 3840000, 101},
		{Oscillator, 40000, 640000, 16},
		{OscillatorPi4, 38000, 684210, 18},
	}
	for _, tt := range tests {
		clock, cycle := clockFor(tt.osc, tt.freq)
		if clock != tt.clock || cycle != tt.cycle {
			t.Errorf("clockFor(%d, %v) = %d, %d, want %d, %d", tt.osc, tt.freq, clock, cycle, tt.clock, tt.cycle)
		}
		if tt.osc%clock == 0 {
			got := float64(clock) / float64(cycle)
			if e := math.Abs(got-tt.freq) / tt.freq; e > 0.001 {
				t.Errorf("clockFor(%d, %v): carrier %v off by %.2f%%", tt.osc, tt.freq, got, e*100)
			}
		}
	}
}

func TestClockForUnreachable(t *testing.T) {
	clock, cycle := clockFor(Oscillator, 5e6)
	if clock != Oscillator/2 || cycle != minCycle {
		t.Errorf("clockFor = %d, %d, want %d, %d", clock, cycle, Oscillator/2, minCycle)
	}
}
