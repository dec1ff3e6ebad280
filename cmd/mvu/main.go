// Command mvu serves, renders and publishes the demo applications.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mvu/internal/config"
	"github.com/vango-dev/mvu/internal/errors"
	"github.com/vango-dev/mvu/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries the state shared by every subcommand once the root command has
// loaded the configuration.
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		errors.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "mvu",
		Short: "A server-driven model-view-update runtime",
		Long: `mvu runs model-view-update applications on the server.

Each browser tab gets its own application instance. Views are diffed
on the server and the resulting edits are streamed to a thin
JavaScript client over a WebSocket.

Examples:
  mvu serve --app counter
  mvu render --app todo > index.html
  mvu publish --app todo --bucket my-site`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default ./"+config.DefaultFileName+" when present)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(c),
		renderCmd(c),
		publishCmd(c),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.LoadOptional(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return errors.New("M020").WithDetail(err.Error())
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return errors.New("M020").WithDetail(err.Error())
	}

	c.cfg = cfg
	c.logger = logging.New(level, format, cmd.ErrOrStderr())
	if path := cfg.Path(); path != "" {
		c.logger.Debug("config loaded", "path", path)
	}
	return nil
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
