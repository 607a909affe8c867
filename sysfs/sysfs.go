//go:build linux

// Package sysfs drives a PWM channel through the Linux PWM class interface,
// /sys/class/pwm/pwmchipN/pwmM.
//
// Period, duty cycle and polarity are written once by Open. Afterwards only
// the enable attribute is written, through a file descriptor kept open so
// that a carrier toggle costs a single pwrite.
package sysfs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultRoot is where the kernel exposes PWM chips.
const DefaultRoot = "/sys/class/pwm"

// exportTimeout bounds the wait for udev to create and chown the channel
// directory after an export.
const exportTimeout = time.Second

// Config selects and configures a channel.
type Config struct {
	// Root defaults to DefaultRoot.
	Root      string
	Chip      int
	Channel   int
	Frequency float64
	DutyCycle float64
	Inverted  bool
}

// Carrier is an exported, configured PWM channel.
type Carrier struct {
	chipDir  string
	dir      string
	channel  int
	exported bool
	enableFd int
}

var (
	on  = []byte("1")
	off = []byte("0")
)

// Open exports the channel if the kernel has not already, configures it
// and leaves it disabled.
func Open(cfg Config) (*Carrier, error) {
	if !(cfg.Frequency > 0) {
		return nil, fmt.Errorf("invalid frequency %v", cfg.Frequency)
	}
	if !(cfg.DutyCycle > 0 && cfg.DutyCycle <= 1) {
		return nil, fmt.Errorf("invalid duty cycle %v", cfg.DutyCycle)
	}
	root := cfg.Root
	if root == "" {
		root = DefaultRoot
	}
	c := &Carrier{
		chipDir:  filepath.Join(root, fmt.Sprintf("pwmchip%d", cfg.Chip)),
		channel:  cfg.Channel,
		enableFd: -1,
	}
	c.dir = filepath.Join(c.chipDir, fmt.Sprintf("pwm%d", cfg.Channel))

	if err := c.export(); err != nil {
		return nil, err
	}
	if err := c.configure(cfg); err != nil {
		c.unexport()
		return nil, err
	}
	fd, err := unix.Open(filepath.Join(c.dir, "enable"), unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		c.unexport()
		return nil, fmt.Errorf("open enable: %w", err)
	}
	c.enableFd = fd
	return c, nil
}

func (c *Carrier) export() error {
	if _, err := os.Stat(c.dir); err == nil {
		return nil
	}
	if err := writeAttr(filepath.Join(c.chipDir, "export"), strconv.Itoa(c.channel)); err != nil {
		return err
	}
	c.exported = true

	deadline := time.Now().Add(exportTimeout)
	for {
		// enable is the last attribute to become writable.
		if err := unix.Access(filepath.Join(c.dir, "enable"), unix.W_OK); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			c.unexport()
			return fmt.Errorf("channel %s not ready after export", c.dir)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Carrier) configure(cfg Config) error {
	period := int64(math.Round(1e9 / cfg.Frequency))
	duty := int64(math.Round(float64(period) * cfg.DutyCycle))
	polarity := "normal"
	if cfg.Inverted {
		polarity = "inversed"
	}

	// Polarity only changes while disabled, and duty_cycle may never
	// exceed period, so zero the duty cycle before moving the period.
	steps := []struct{ attr, value string }{
		{"enable", "0"},
		{"duty_cycle", "0"},
		{"period", strconv.FormatInt(period, 10)},
		{"duty_cycle", strconv.FormatInt(duty, 10)},
		{"polarity", polarity},
	}
	for _, s := range steps {
		if err := writeAttr(filepath.Join(c.dir, s.attr), s.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Carrier) unexport() {
	if !c.exported {
		return
	}
	_ = writeAttr(filepath.Join(c.chipDir, "unexport"), strconv.Itoa(c.channel))
	c.exported = false
}

func writeAttr(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c *Carrier) setEnable(v []byte) error {
	if c.enableFd < 0 {
		return os.ErrClosed
	}
	if _, err := unix.Pwrite(c.enableFd, v, 0); err != nil {
		return fmt.Errorf("write %s/enable: %w", c.dir, err)
	}
	return nil
}

// Enable starts the carrier.
func (c *Carrier) Enable() error { return c.setEnable(on) }

// Disable stops the carrier.
func (c *Carrier) Disable() error { return c.setEnable(off) }

// Close disables the channel and unexports it if Open exported it.
func (c *Carrier) Close() error {
	if c.enableFd < 0 {
		return nil
	}
	errDisable := c.Disable()
	errClose := unix.Close(c.enableFd)
	c.enableFd = -1
	c.unexport()
	return errors.Join(errDisable, errClose)
}
