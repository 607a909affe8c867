// irremoted owns the PWM channel of one remote and transmits its signals
// on request over HTTP. See package server for the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sparques/irremote"
	"github.com/sparques/irremote/driver"
	"github.com/sparques/irremote/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "irremoted: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		listen     string
		logLevel   string
	)
	flagSet := pflag.NewFlagSet("irremoted", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "config.toml", "remote config file (.toml, .yaml, .json)")
	flagSet.StringVar(&listen, "listen", ":8080", "HTTP listen address")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := irremote.LoadConfig(configPath)
	if err != nil {
		return err
	}
	for _, c := range cfg.Truncated() {
		log.Warn("value wider than bits, sending low bits only",
			"signal", c.Signal, "value", fmt.Sprintf("%#x", c.Code), "bits", cfg.Bits)
	}

	tx, err := driver.Open(cfg, log)
	if err != nil {
		return err
	}
	defer tx.Close()

	remote := irremote.New(cfg, tx, irremote.WithLogger(log))
	srv := &http.Server{
		Addr:              listen,
		Handler:           server.New(remote, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", listen, "remote", cfg.Name, "signals", len(remote.Signals()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
