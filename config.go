package irremote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Bits is a TimePair as written in config files: on and off time in
// microseconds, e.g. header = [9000, 4500].
type Bits [2]uint32

// Pair converts b to a TimePair.
func (b Bits) Pair() TimePair {
	return TimePair{
		time.Duration(b[0]) * time.Microsecond,
		time.Duration(b[1]) * time.Microsecond,
	}
}

func (b Bits) isZero() bool { return b == Bits{} }

// Code maps a signal name to the numeric code sent for it.
type Code struct {
	Signal string `toml:"signal" yaml:"signal" json:"signal"`
	Code   uint32 `toml:"code" yaml:"code" json:"code"`
}

// RemoteConfig is the timing and addressing contract of one remote.
// It is not modified after LoadConfig returns.
type RemoteConfig struct {
	// Name labels the remote in logs and the HTTP API. Optional.
	Name string `toml:"name" yaml:"name" json:"name"`

	// Protocol names a timing preset ("nec", "samsung") that fills any
	// timing field left at zero.
	Protocol string `toml:"protocol" yaml:"protocol" json:"protocol"`

	// Bits is the width of both the address and every code, 1-32.
	Bits uint8 `toml:"bits" yaml:"bits" json:"bits"`

	Header Bits `toml:"header" yaml:"header" json:"header"`
	One    Bits `toml:"one" yaml:"one" json:"one"`
	Zero   Bits `toml:"zero" yaml:"zero" json:"zero"`
	Gap    Bits `toml:"gap" yaml:"gap" json:"gap"`

	// Repeat is how many times the whole frame is sent.
	Repeat uint8 `toml:"repeat" yaml:"repeat" json:"repeat"`

	// Frequency is the carrier frequency in Hz.
	Frequency float64 `toml:"frequency" yaml:"frequency" json:"frequency"`

	// Address is sent before every code.
	Address uint32 `toml:"address" yaml:"address" json:"address"`

	// Codes is searched in order; the first entry with a matching signal wins.
	Codes []Code `toml:"codes" yaml:"codes" json:"codes"`

	Transmitter TransmitterConfig `toml:"transmitter" yaml:"transmitter" json:"transmitter"`
}

// Transmitter drivers.
const (
	DriverSysfs  = "sysfs"
	DriverRpio   = "rpio"
	DriverSerial = "serial"
)

// Carrier polarities, named as the Linux PWM sysfs interface names them.
const (
	PolarityNormal   = "normal"
	PolarityInversed = "inversed"
)

// TransmitterConfig selects and configures the PWM collaborator. Fields a
// driver does not use are ignored.
type TransmitterConfig struct {
	Driver string `toml:"driver" yaml:"driver" json:"driver"`

	// sysfs: /sys/class/pwm/pwmchip<Chip>/pwm<Channel>
	Chip    int `toml:"chip" yaml:"chip" json:"chip"`
	Channel int `toml:"channel" yaml:"channel" json:"channel"`

	// rpio: BCM pin number of a hardware PWM pin, and the PWM clock source
	// in Hz (52000000 on a Pi 4; 0 means 19.2MHz)
	Pin        int `toml:"pin" yaml:"pin" json:"pin"`
	Oscillator int `toml:"oscillator" yaml:"oscillator" json:"oscillator"`

	// serial
	Device string `toml:"device" yaml:"device" json:"device"`
	Baud   int    `toml:"baud" yaml:"baud" json:"baud"`

	DutyCycle float64 `toml:"duty_cycle" yaml:"duty_cycle" json:"duty_cycle"`
	Polarity  string  `toml:"polarity" yaml:"polarity" json:"polarity"`
}

// Inverted reports whether the carrier idles high.
func (t TransmitterConfig) Inverted() bool { return t.Polarity == PolarityInversed }

// LoadConfig reads, decodes, completes and validates the config at path.
// The format follows the extension: .yaml/.yml, .json/.jsonc, anything
// else is TOML.
func LoadConfig(path string) (*RemoteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Kind: ErrReadConfig, Err: err}
	}
	cfg, err := ParseConfig(data, formatOf(path))
	if err != nil {
		return nil, &ConfigError{Path: path, Kind: ErrParseConfig, Err: err}
	}
	return cfg, nil
}

// Config file formats understood by ParseConfig.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json", ".jsonc":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// ParseConfig decodes data in the given format, applies the protocol
// preset and defaults, and validates the result. Unknown keys are errors.
func ParseConfig(data []byte, format string) (*RemoteConfig, error) {
	var (
		cfg     RemoteConfig
		defined func(key string) bool
	)
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys %v", undecoded)
		}
		defined = func(key string) bool { return md.IsDefined(key) }
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		var keys map[string]any
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return nil, err
		}
		defined = hasKey(keys)
	case FormatJSON:
		data = jsonc.ToJSON(data)
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
		var keys map[string]any
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, err
		}
		defined = hasKey(keys)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	if err := cfg.checkRequired(defined); err != nil {
		return nil, err
	}
	if err := cfg.applyPreset(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func hasKey(keys map[string]any) func(string) bool {
	return func(key string) bool {
		_, ok := keys[key]
		return ok
	}
}

// checkRequired rejects a config that leaves out a key with no usable
// zero value. A protocol preset supplies the timing keys.
func (c *RemoteConfig) checkRequired(defined func(key string) bool) error {
	required := []string{"address", "codes"}
	if c.Protocol == "" {
		required = append(required, "bits", "header", "one", "zero", "gap", "frequency")
	}
	var missing []string
	for _, key := range required {
		if !defined(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *RemoteConfig) applyDefaults() {
	if c.Repeat == 0 {
		c.Repeat = 1
	}
	t := &c.Transmitter
	if t.Driver == "" {
		t.Driver = DriverSysfs
	}
	if t.Pin == 0 {
		t.Pin = 18
	}
	if t.Baud == 0 {
		t.Baud = 115200
	}
	if t.DutyCycle == 0 {
		t.DutyCycle = 0.5
	}
	if t.Polarity == "" {
		t.Polarity = PolarityNormal
	}
}

// Validate checks the invariants the codec relies on. Address and code
// values wider than Bits are not rejected; see Truncated.
func (c *RemoteConfig) Validate() error {
	var errs []error
	if c.Bits < 1 || c.Bits > 32 {
		errs = append(errs, fmt.Errorf("bits must be between 1 and 32, got %d", c.Bits))
	}
	if c.Repeat < 1 {
		errs = append(errs, errors.New("repeat must be at least 1"))
	}
	if !(c.Frequency > 0) {
		errs = append(errs, fmt.Errorf("frequency must be positive, got %v", c.Frequency))
	}
	if len(c.Codes) == 0 {
		errs = append(errs, errors.New("no codes configured"))
	}
	t := c.Transmitter
	switch t.Driver {
	case DriverSysfs, DriverRpio, DriverSerial:
	default:
		errs = append(errs, fmt.Errorf("unknown transmitter driver %q", t.Driver))
	}
	if !(t.DutyCycle > 0 && t.DutyCycle <= 1) {
		errs = append(errs, fmt.Errorf("duty_cycle must be in (0, 1], got %v", t.DutyCycle))
	}
	switch t.Polarity {
	case PolarityNormal, PolarityInversed:
	default:
		errs = append(errs, fmt.Errorf("unknown polarity %q", t.Polarity))
	}
	if t.Driver == DriverSerial && t.Device == "" {
		errs = append(errs, errors.New("serial transmitter needs a device"))
	}
	return errors.Join(errs...)
}

// Truncated lists the address and codes that do not fit in Bits. They are
// still sent, masked to their low Bits bits.
func (c *RemoteConfig) Truncated() []Code {
	if c.Bits >= 32 {
		return nil
	}
	limit := uint32(1) << c.Bits
	var out []Code
	if c.Address >= limit {
		out = append(out, Code{Signal: "address", Code: c.Address})
	}
	for _, code := range c.Codes {
		if code.Code >= limit {
			out = append(out, code)
		}
	}
	return out
}
