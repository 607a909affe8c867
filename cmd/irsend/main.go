// irsend transmits one IR signal described by a remote config file.
//
//	irsend --config tv.toml --signal power
//
// With --dry-run the pulses are printed instead of sent, and no PWM
// channel is opened.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/driver"
)

type options struct {
	config   string
	signal   string
	list     bool
	dryRun   bool
	settle   time.Duration
	logLevel string
}

// errUsage marks errors that should exit with status 2.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "irsend: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("irsend", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.config, "config", "c", "config.toml", "remote config file (.toml, .yaml, .json)")
	flagSet.StringVarP(&opts.signal, "signal", "s", "", "name of the signal to emit")
	flagSet.BoolVarP(&opts.list, "list", "l", false, "list the configured signals and exit")
	flagSet.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the pulses instead of transmitting")
	flagSet.DurationVar(&opts.settle, "settle", time.Second, "pause after opening the PWM channel and after transmitting")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, err
		}
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}
	if flagSet.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected argument %q", errUsage, flagSet.Arg(0))
	}
	if opts.signal == "" && !opts.list {
		return opts, fmt.Errorf("%w: --signal is required", errUsage)
	}
	return opts, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: invalid --log-level %q", errUsage, level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	log, err := newLogger(opts.logLevel, stderr)
	if err != nil {
		return err
	}

	cfg, err := irremote.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	for _, c := range cfg.Truncated() {
		log.Warn("value wider than bits, sending low bits only",
			"signal", c.Signal, "value", fmt.Sprintf("%#x", c.Code), "bits", cfg.Bits)
	}

	if opts.list {
		for _, name := range irremote.New(cfg, nil).Signals() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}
	if opts.dryRun {
		return dryRun(cfg, opts.signal, stdout)
	}

	// Resolve the name before touching the hardware.
	if _, err := irremote.New(cfg, nil).Lookup(opts.signal); err != nil {
		return err
	}
	tx, err := driver.Open(cfg, log)
	if err != nil {
		return err
	}
	defer tx.Close()

	remote := irremote.New(cfg, tx, irremote.WithLogger(log))
	time.Sleep(opts.settle)
	if err := remote.Transmit(opts.signal); err != nil {
		return err
	}
	time.Sleep(opts.settle)
	return nil
}

func dryRun(cfg *irremote.RemoteConfig, signal string, w io.Writer) error {
	fms, err := irremote.New(cfg, nil).Frames(signal)
	if err != nil {
		return err
	}
	for i, fm := range fms {
		pairs := fm.MarshalFrame()
		cols := make([]string, len(pairs))
		for j, p := range pairs {
			cols[j] = fmt.Sprintf("%d/%d", p.On().Microseconds(), p.Off().Microseconds())
		}
		fmt.Fprintf(w, "frame %d: %s\n", i+1, strings.Join(cols, " "))
	}
	return nil
}
