package irremote

import (
	"log/slog"
	"runtime"
	"sync"
)

// TxDevice is a Transmitter that keys a PWM Carrier directly. It owns the
// carrier: SendFrames calls from different goroutines never interleave.
type TxDevice struct {
	mu      sync.Mutex
	carrier Carrier
	sleeper Sleeper
	log     *slog.Logger
}

// TxOption configures a TxDevice.
type TxOption func(*TxDevice)

// WithSleeper replaces the default SpinSleeper.
func WithSleeper(s Sleeper) TxOption {
	return func(tx *TxDevice) { tx.sleeper = s }
}

// WithTxLogger sets the logger for carrier failures.
func WithTxLogger(l *slog.Logger) TxOption {
	return func(tx *TxDevice) { tx.log = l }
}

// NewTxDevice returns a TxDevice keying carrier. The carrier must start disabled.
func NewTxDevice(carrier Carrier, opts ...TxOption) *TxDevice {
	tx := &TxDevice{
		carrier: carrier,
		sleeper: SpinSleeper{Slack: DefaultSpinSlack},
		log:     discardLogger,
	}
	for _, opt := range opts {
		opt(tx)
	}
	return tx
}

// SendPair enables the carrier for pair.On(), then disables it for pair.Off().
func (tx *TxDevice) SendPair(pair TimePair) error {
	return tx.hold(func() error { return tx.sendPair(pair) })
}

// SendPairs sends pairs in order, stopping at the first carrier error.
func (tx *TxDevice) SendPairs(pairs ...TimePair) error {
	return tx.hold(func() error { return tx.sendPairs(pairs) })
}

// SendFrame marshals and sends a single frame.
func (tx *TxDevice) SendFrame(fm FrameMarshaller) error {
	return tx.SendFrames(fm)
}

// SendFrames sends the frames back to back while holding the carrier.
// A failed enable or disable aborts the rest; partial frames are not resumed.
func (tx *TxDevice) SendFrames(fms ...FrameMarshaller) error {
	return tx.hold(func() error {
		for _, fm := range fms {
			if err := tx.sendPairs(fm.MarshalFrame()); err != nil {
				return err
			}
		}
		return nil
	})
}

// hold runs send with the carrier locked and the goroutine pinned to its
// OS thread.
func (tx *TxDevice) hold(send func() error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	return send()
}

func (tx *TxDevice) sendPairs(pairs []TimePair) error {
	for _, p := range pairs {
		if err := tx.sendPair(p); err != nil {
			return err
		}
	}
	return nil
}

func (tx *TxDevice) sendPair(pair TimePair) error {
	if err := tx.carrier.Enable(); err != nil {
		tx.log.Error("carrier enable failed", "error", err)
		return NewPWMError(ErrPWMIO, "enable", err)
	}
	tx.sleeper.Sleep(pair.On())
	if err := tx.carrier.Disable(); err != nil {
		tx.log.Error("carrier disable failed", "error", err)
		return NewPWMError(ErrPWMIO, "disable", err)
	}
	tx.sleeper.Sleep(pair.Off())
	return nil
}

// Close releases the carrier.
func (tx *TxDevice) Close() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.carrier.Close()
}
