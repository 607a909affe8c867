package irremote

import "time"

// DefaultSpinSlack is the window before a deadline that SpinSleeper busy-waits through.
const DefaultSpinSlack = time.Millisecond

// SpinSleeper sleeps with the OS scheduler until Slack before the deadline,
// then spins on the monotonic clock for the rest.
//
// time.Sleep alone routinely wakes 50-100us late on Linux, which is more
// than most IR receivers tolerate. With the spin tail, wake-up on an idle
// host lands within a few microseconds of the deadline. The kernel can
// still preempt the thread mid-spin; that adds tens of microseconds and is
// not guarded against.
type SpinSleeper struct {
	Slack time.Duration
}

// Sleep blocks for at least d.
func (s SpinSleeper) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	if d > s.Slack {
		time.Sleep(d - s.Slack)
	}
	for time.Now().Before(deadline) {
	}
}
