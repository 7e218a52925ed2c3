package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"taiga-hours/internal/app"
	"taiga-hours/internal/config"
	"taiga-hours/internal/shell"
)

// NewRootCommand builds the taiga-hours command tree. Without a subcommand
// it runs the interactive shell on stdin/stdout.
func NewRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "taiga-hours",
		Short: "Report hours recorded on Taiga tasks",
		Long: `taiga-hours sums the labor custom attribute of Taiga tasks assigned to a user
and reports it in academic hours, astronomical hours and course credits.

Configuration is read from the environment and an optional .env file:
TAIGA_URL, TAIGA_LOGIN, TAIGA_PASSWORD, TAIGA_LABOR_ATTRIBUTE, TAIGA_CONCURRENCY,
TAIGA_HTTP_TIMEOUT, CHAT_URL, CHAT_BASIC_AUTH, MYSQL_DSN.

The labor attribute is matched by exact name, "Трудозатраты" by default.
Set TAIGA_LABOR_ATTRIBUTE for instances that label it differently, for
example TAIGA_LABOR_ATTRIBUTE="Labor/Effort".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, verbose)
			if err != nil {
				return err
			}
			return a.RunShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), passwordReader(cmd.InOrStdin()))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newBatchCommand(&verbose))
	root.AddCommand(newServeCommand(&verbose))
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newApp(cmd *cobra.Command, verbose bool) (*app.App, error) {
	logger := newLogger(cmd.ErrOrStderr(), verbose)
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return nil, err
	}
	return app.New(logger, cfg), nil
}

// newLogger writes to stderr so that reports on stdout stay clean.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func passwordReader(in io.Reader) func() (string, error) {
	if f, ok := in.(*os.File); ok {
		return shell.TerminalPassword(f)
	}
	return nil
}
