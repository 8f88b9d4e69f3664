package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/vaultdesk/internal/config"
	"github.com/example/vaultdesk/internal/security"
	"github.com/example/vaultdesk/internal/storage"
)

// withStore loads the configuration and opens the settings store for the
// duration of fn.
func withStore(opts *globalOptions, fn func(cfg *config.Config, store storage.Store) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	secret, err := security.ResolveSecret()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, secret)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func newLoginItemCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login-item",
		Short: "Inspect or change launching at login",
	}

	run := func(action string) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			return withStore(opts, func(cfg *config.Config, store storage.Store) error {
				mgr, err := newLoginItems(cfg, store)
				if err != nil {
					return err
				}
				switch action {
				case "enable":
					err = mgr.Add()
				case "disable":
					err = mgr.Remove()
				default:
					err = mgr.Init()
				}
				if err != nil {
					return err
				}

				enabled, err := storage.GetBool(store, storage.KeyOpenAtLogin)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "open at login: %s\n", enabledLabel(enabled))
				return nil
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "status", Short: "Show the current registration", Args: cobra.NoArgs, RunE: run("status")},
		&cobra.Command{Use: "enable", Short: "Launch at login", Args: cobra.NoArgs, RunE: run("enable")},
		&cobra.Command{Use: "disable", Short: "Stop launching at login", Args: cobra.NoArgs, RunE: run("disable")},
	)
	return cmd
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change persisted host settings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored settings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withStore(opts, func(_ *config.Config, store storage.Store) error {
				keys, err := store.Keys()
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					fmt.Fprintln(c.OutOrStdout(), "No settings stored.")
					return nil
				}
				for _, key := range keys {
					var raw json.RawMessage
					if err := store.Get(key, &raw); err != nil {
						return err
					}
					fmt.Fprintf(c.OutOrStdout(), "%s = %s\n", key, raw)
				}
				return nil
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withStore(opts, func(_ *config.Config, store storage.Store) error {
				var raw json.RawMessage
				if err := store.Get(args[0], &raw); err != nil {
					return fmt.Errorf("get %s: %w", args[0], err)
				}
				fmt.Fprintln(c.OutOrStdout(), string(raw))
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one setting; the value is parsed as JSON when possible",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withStore(opts, func(_ *config.Config, store storage.Store) error {
				value := parseSettingValue(args[1])
				if err := store.Save(args[0], value); err != nil {
					return fmt.Errorf("set %s: %w", args[0], err)
				}
				fmt.Fprintf(c.OutOrStdout(), "Saved %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, get, set)
	return cmd
}

func parseSettingValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return raw
}

func newManifestsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifests",
		Short: "Manage browser native messaging manifests",
	}

	run := func(remove bool) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			bridge, err := newBridge(cfg, nil)
			if err != nil {
				return err
			}
			if remove {
				err = bridge.RemoveManifests()
			} else {
				err = bridge.GenerateManifests()
			}
			if err != nil {
				return err
			}
			for _, path := range bridge.ManifestPaths() {
				verb := "wrote"
				if remove {
					verb = "removed"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s %s\n", verb, path)
			}
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "generate", Short: "Write manifests for supported browsers", Args: cobra.NoArgs, RunE: run(false)},
		&cobra.Command{Use: "remove", Short: "Delete previously written manifests", Args: cobra.NoArgs, RunE: run(true)},
	)
	return cmd
}
