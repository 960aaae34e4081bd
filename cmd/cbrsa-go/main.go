package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/coinbase/cb-rsa-go/internal/config"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses the global settings up to the first command word and hands the
// rest of args to the command app.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := config.NewFlagSet()
	fs.SetOutput(stderr)

	cfg, err := config.Load(fs, args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return newApp(nil, logging.Nop(), stdout).RunContext(ctx, []string{args[0], "help"})
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.FromConfig(cfg.Log.Backend, cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}
	cfg.Print(ctx, logger)

	return newApp(cfg, logger, stdout).RunContext(ctx, append([]string{args[0]}, fs.Args()...))
}
