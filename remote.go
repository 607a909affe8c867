package irremote

import (
	"io"
	"log/slog"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Remote sends the named signals of one RemoteConfig through a Transmitter.
type Remote struct {
	cfg *RemoteConfig
	tx  Transmitter
	log *slog.Logger
}

// Option configures a Remote.
type Option func(*Remote)

// WithLogger sets the logger used for transmissions.
func WithLogger(l *slog.Logger) Option {
	return func(r *Remote) { r.log = l }
}

// New returns a Remote for cfg. The Remote does not own tx; close it separately.
func New(cfg *RemoteConfig, tx Transmitter, opts ...Option) *Remote {
	r := &Remote{cfg: cfg, tx: tx, log: discardLogger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the config the Remote was built with. Callers must not modify it.
func (r *Remote) Config() *RemoteConfig { return r.cfg }

// Lookup returns the code of the first entry named signal.
func (r *Remote) Lookup(signal string) (uint32, error) {
	for _, c := range r.cfg.Codes {
		if c.Signal == signal {
			return c.Code, nil
		}
	}
	return 0, &SignalNotFoundError{Signal: signal}
}

// Signals lists the configured signal names in declaration order, each once.
func (r *Remote) Signals() []string {
	seen := make(map[string]bool, len(r.cfg.Codes))
	out := make([]string, 0, len(r.cfg.Codes))
	for _, c := range r.cfg.Codes {
		if seen[c.Signal] {
			continue
		}
		seen[c.Signal] = true
		out = append(out, c.Signal)
	}
	return out
}

// Frames returns the frames Transmit would send for signal: Repeat copies
// of the same frame.
func (r *Remote) Frames(signal string) ([]FrameMarshaller, error) {
	code, err := r.Lookup(signal)
	if err != nil {
		return nil, err
	}
	return r.frames(code), nil
}

func (r *Remote) frames(code uint32) []FrameMarshaller {
	frame := r.cfg.Frame(code)
	fms := make([]FrameMarshaller, int(r.cfg.Repeat))
	for i := range fms {
		fms[i] = frame
	}
	return fms
}

// Transmit sends signal Repeat times. An unknown signal fails before the
// transmitter is touched. Any other failure leaves the receiver with a
// partial transmission; resend from the start.
func (r *Remote) Transmit(signal string) error {
	code, err := r.Lookup(signal)
	if err != nil {
		return err
	}
	r.log.Debug("transmitting", "remote", r.cfg.Name, "signal", signal,
		"code", code, "repeat", r.cfg.Repeat)
	if err := r.tx.SendFrames(r.frames(code)...); err != nil {
		return err
	}
	r.log.Debug("transmitted", "remote", r.cfg.Name, "signal", signal)
	return nil
}
