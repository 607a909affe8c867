// Package irtest provides a virtual-clock carrier for testing code that
// transmits through an irremote.TxDevice.
package irtest

import (
	"errors"
	"sync"
	"time"

	"github.com/sparques/irremote"
)

// ErrInjected is returned by a Recorder carrier call selected with FailAt.
var ErrInjected = errors.New("irtest: injected carrier failure")

// Transition is one carrier state change at a point on the virtual clock.
type Transition struct {
	Enabled bool
	At      time.Duration
}

// Recorder is both the Carrier and the Sleeper of a TxDevice. Sleeping
// advances a virtual clock instead of blocking, so recorded pulses are
// exact.
type Recorder struct {
	mu     sync.Mutex
	now    time.Duration
	trace  []Transition
	calls  int
	failAt int
	closed bool
	yield  time.Duration
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// NewTxDevice returns a TxDevice that records into a new Recorder.
func NewTxDevice() (*irremote.TxDevice, *Recorder) {
	rec := NewRecorder()
	return irremote.NewTxDevice(rec, irremote.WithSleeper(rec)), rec
}

// FailAt makes the n-th Enable or Disable call (1-based) return ErrInjected.
func (r *Recorder) FailAt(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt = n
}

func (r *Recorder) set(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls == r.failAt {
		return ErrInjected
	}
	r.trace = append(r.trace, Transition{Enabled: enabled, At: r.now})
	return nil
}

// Enable records the carrier switching on.
func (r *Recorder) Enable() error { return r.set(true) }

// Disable records the carrier switching off.
func (r *Recorder) Disable() error { return r.set(false) }

// Close marks the recorder closed. It never fails.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Yield makes every Sleep also block for d of real time, so that other
// goroutines get to run while a transmission is in progress.
func (r *Recorder) Yield(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.yield = d
}

// Sleep advances the virtual clock by d.
func (r *Recorder) Sleep(d time.Duration) {
	r.mu.Lock()
	r.now += d
	yield := r.yield
	r.mu.Unlock()
	if yield > 0 {
		time.Sleep(yield)
	}
}

// Calls is the number of Enable and Disable calls so far, failed ones included.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Trace returns a copy of the recorded transitions.
func (r *Recorder) Trace() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.trace...)
}

// Pairs rebuilds the sent pulses from the trace. Each enable starts a pair;
// its off phase runs until the next enable, or until the current virtual
// time for the last one.
func (r *Recorder) Pairs() []irremote.TimePair {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []irremote.TimePair
	for i := 0; i < len(r.trace); i++ {
		if !r.trace[i].Enabled {
			continue
		}
		on := r.trace[i].At
		off, end := r.now, r.now
		if i+1 < len(r.trace) && !r.trace[i+1].Enabled {
			off = r.trace[i+1].At
			if i+2 < len(r.trace) {
				end = r.trace[i+2].At
			}
			i++
		}
		out = append(out, irremote.TimePair{off - on, end - off})
	}
	return out
}
