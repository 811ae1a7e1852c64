package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	simple "github.com/hwdepot/rigbuilder/config"
	"github.com/hwdepot/rigbuilder/internal/logging"
	"github.com/hwdepot/rigbuilder/internal/setup"
)

const (
	defaultLogLevel  = "warning"
	defaultLogFormat = "text"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	installPropagator()
	c := newCLI(os.Stderr)
	root := newRootCommand(c)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		c.logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// installPropagator makes published orders carry W3C trace context and
// baggage headers.
func installPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// cli carries the global flags and the logger shared by every command.
type cli struct {
	logOut     io.Writer
	levelVar   *slog.LevelVar
	logger     *slog.Logger
	logLevel   string
	logFormat  string
	configPath string
}

func newCLI(logOut io.Writer) *cli {
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelWarn)
	logger := logging.New(logging.FormatText, logOut, levelVar)
	slog.SetDefault(logger)
	return &cli{
		logOut:    logOut,
		levelVar:  levelVar,
		logger:    logger,
		logLevel:  defaultLogLevel,
		logFormat: defaultLogFormat,
	}
}

// configure applies --log-level and --log-format.
func (c *cli) configure() error {
	level, err := logging.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.logFormat)
	if err != nil {
		return err
	}
	c.levelVar.Set(level)
	c.logger = logging.New(format, c.logOut, c.levelVar)
	slog.SetDefault(c.logger)
	setup.SetLogger(c.logger)
	return nil
}

// open loads configuration and wires the application for one command.
func (c *cli) open(ctx context.Context) (*simple.App, error) {
	cfg, err := setup.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	return simple.Open(ctx, cfg, c.logger)
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "rigbuilder",
		Short:         "PC-build configurator, checkout and stock-take console",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure()
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", defaultLogLevel, "Set log verbosity (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", defaultLogFormat, "Log output format (text, json)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/rigbuilder/config.yaml)")

	root.AddCommand(
		newCatalogCommand(c),
		newPickCommand(c),
		newBuildCommand(c),
		newCheckoutCommand(c),
		newOrdersCommand(c),
		newStocktakeCommand(c),
	)
	return root
}
