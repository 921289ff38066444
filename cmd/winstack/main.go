package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/winstack/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:           "winstack",
		Short:         "winstack stacks, tiles and layers X11 windows",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(os.Stderr, logging.Options{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("winstack %s\ncommit: %s\n", version, commit))
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json, logfmt)")

	root.AddCommand(newDaemonCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRaiseCmd())
	root.AddCommand(newFocusCmd())
	root.AddCommand(newSplitRatioCmd())
	root.AddCommand(newMinimizeAllCmd())
	root.AddCommand(newReloadCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newMCPCmd())
	return root
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext falls back to slog.Default when no logger was attached.
func loggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
