// Command detector is the command-line client for the analyze gateway. It keeps
// scan history in the configured local storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ai-detector/internal/client/gateway"
	"github.com/bryanwahyu/ai-detector/internal/client/reconcile"
	"github.com/bryanwahyu/ai-detector/internal/config"
	"github.com/bryanwahyu/ai-detector/internal/history"
	"github.com/bryanwahyu/ai-detector/internal/infra/logging"
	"github.com/bryanwahyu/ai-detector/internal/infra/storage"
)

type options struct {
	configPath string
	gatewayURL string
	driver     string
	verbose    bool
}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	out     io.Writer
	log     *zap.Logger
	backend storage.Backend
	store   *history.Store
	session *reconcile.Session
}

func openApp(ctx context.Context, opts *options, out, errOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.gatewayURL != "" {
		cfg.Client.GatewayURL = opts.gatewayURL
	}
	if opts.driver != "" {
		cfg.Client.Storage.Driver = opts.driver
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg.Client.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := history.NewStore(backend, cfg.Client.HistoryKey, logger)
	if err := store.Load(ctx); err != nil {
		backend.Close()
		return nil, err
	}

	notify := reconcile.NotifierFunc(func(a reconcile.Action, err error) {
		fmt.Fprintf(errOut, "%s failed: %v\n", a, err)
	})
	session := reconcile.NewSession(gateway.New(cfg.Client.GatewayURL, nil), store,
		reconcile.WithNotifier(notify),
		reconcile.WithLogger(logger),
	)
	return &app{out: out, log: logger, backend: backend, store: store, session: session}, nil
}

func (a *app) Close() error {
	a.log.Sync()
	return a.backend.Close()
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp runs fn with a freshly opened app and closes it afterwards.
func withApp(opts *options, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "detector",
		Short:         "Check text, documents and images for AI-generated content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfig, "Config file")
	root.PersistentFlags().StringVar(&opts.gatewayURL, "gateway", "", "Gateway base URL (overrides config)")
	root.PersistentFlags().StringVar(&opts.driver, "storage", "", "History storage driver (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newHumanizeCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
