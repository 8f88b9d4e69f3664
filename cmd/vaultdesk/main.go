package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/vaultdesk/internal/config"
	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/nativemessaging"
)

// Set via -ldflags at release time.
var (
	Version   = "0.0.0-dev"
	BuildTime = "unknown"
)

type globalOptions struct {
	configPath string
	debug      bool
	console    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "vaultdesk",
		Short:         "Vaultdesk desktop host",
		Long:          "Vaultdesk runs the privileged host of the desktop vault: tray menu, sync scheduling, login item and browser integration.",
		Version:       Version + " (" + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				logging.EnableDebug()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if nativemessaging.IsProxyInvocation(args) {
				return runProxy(cmd.Context(), opts)
			}
			if len(args) > 0 {
				return fmt.Errorf("unknown command %q", args[0])
			}
			return runHost(cmd.Context(), opts)
		},
	}

	// Chromium appends its own flags when launching the proxy.
	root.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.console, "console", false, "keep the console window open (windows)")
	_ = root.PersistentFlags().MarkHidden("console")

	root.AddCommand(
		newRunCmd(opts),
		newLoginItemCmd(opts),
		newSettingsCmd(opts),
		newManifestsCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the host (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), opts)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vaultdesk %s (built %s)\n", Version, BuildTime)
		},
	}
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if !opts.debug {
		logging.SetLevel(cfg.Log.Level)
	}
	return cfg, nil
}

func runProxy(ctx context.Context, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	return nativemessaging.RunProxy(ctx, cfg.NativeMessaging.Endpoint, os.Stdin)
}
