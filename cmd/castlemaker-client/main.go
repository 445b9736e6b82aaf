package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pixil98/castlemaker/internal/client"
	"github.com/pixil98/castlemaker/internal/logging"
	"github.com/spf13/pflag"
)

func main() {
	opts, err := loadOptions(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logCfg := logging.Config{File: opts.LogFile, Level: opts.LogLevel}
	if err := logCfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logCfg.Install()

	if err := run(opts); err != nil {
		slog.Error("running client", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, opts.Timeout)
	defer dialCancel()

	c, err := client.Dial(dialCtx, client.Options{
		Transport: opts.Transport,
		Addr:      opts.Addr,
		Path:      opts.Path,
		User:      opts.Name,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	// Interrupts close the connection, which unblocks any pending read.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	world, err := c.Handshake(opts.Name)
	if err != nil {
		return fmt.Errorf("joining as %s: %w", opts.Name, err)
	}
	slog.Info("joined", "addr", opts.Addr, "transport", opts.Transport, "name", opts.Name)

	if opts.Print {
		fmt.Print(formatWorld(world))
		return nil
	}

	return runTUI(c, world)
}
