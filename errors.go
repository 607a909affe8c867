package irremote

import (
	"errors"
	"fmt"
)

var (
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("unable to read config")
	// ErrParseConfig is returned when the config file does not decode into a valid RemoteConfig.
	ErrParseConfig = errors.New("unable to parse config")
	// ErrPWMInit is returned when the PWM channel cannot be configured.
	ErrPWMInit = errors.New("pwm init failed")
	// ErrPWMIO is returned when toggling the carrier fails mid-transmission.
	ErrPWMIO = errors.New("pwm io failed")
	// ErrSignalNotFound is returned when no code carries the requested signal name.
	ErrSignalNotFound = errors.New("signal not found")
)

// ConfigError reports a config file that could not be loaded. Kind is
// ErrReadConfig or ErrParseConfig.
type ConfigError struct {
	Path string
	Kind error
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v from %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() []error { return []error{e.Kind, e.Err} }

// PWMError wraps a failure of the PWM collaborator. Kind is ErrPWMInit or ErrPWMIO.
type PWMError struct {
	Kind error
	Op   string
	Err  error
}

// NewPWMError wraps err as a PWMError of the given kind.
func NewPWMError(kind error, op string, err error) *PWMError {
	return &PWMError{Kind: kind, Op: op, Err: err}
}

func (e *PWMError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *PWMError) Unwrap() []error { return []error{e.Kind, e.Err} }

// SignalNotFoundError names the signal that was requested.
type SignalNotFoundError struct {
	Signal string
}

func (e *SignalNotFoundError) Error() string {
	return fmt.Sprintf("signal not found %q", e.Signal)
}

func (e *SignalNotFoundError) Is(target error) bool { return target == ErrSignalNotFound }
