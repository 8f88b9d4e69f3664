package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/example/vaultdesk/internal/config"
	"github.com/example/vaultdesk/internal/ipc"
	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/loginitem"
	"github.com/example/vaultdesk/internal/menu"
	"github.com/example/vaultdesk/internal/messaging"
	"github.com/example/vaultdesk/internal/nativemessaging"
	"github.com/example/vaultdesk/internal/protocol"
	"github.com/example/vaultdesk/internal/security"
	"github.com/example/vaultdesk/internal/storage"
)

func runHost(parent context.Context, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	secret, err := security.ResolveSecret()
	if err != nil {
		return err
	}
	token := security.ChannelToken(secret)
	endpoint := ipc.DefaultEndpoint(cfg.Endpoint)

	if conn, err := endpoint.DialContext(parent); err == nil {
		_ = conn.Close()
		return fmt.Errorf("another host is already listening on %s", endpoint.String())
	}

	store, err := openStore(cfg, secret)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var dispatcher *messaging.Dispatcher

	server := ipc.NewServer(endpoint, token, func(cmd protocol.Command) {
		dispatcher.Deliver(cmd)
	})
	tray := menu.NewTray(server, menu.English, func(entry menu.Entry) {
		dispatcher.Post(func() { dispatcher.HandleTrayAction(entry) })
	})

	var logins messaging.LoginItems
	if mgr, err := newLoginItems(cfg, store); err != nil {
		logging.Warnf("login item support disabled: %v", err)
	} else {
		logins = mgr
	}

	var browser messaging.BrowserIntegration
	bridge, err := newBridge(cfg, func(payload json.RawMessage) {
		server.Send(protocol.NativeMessage(payload))
	})
	if err != nil {
		logging.Warnf("browser integration disabled: %v", err)
	} else {
		browser = bridge
	}

	dispatcher = messaging.NewDispatcher(messaging.Options{
		Store:      store,
		Windows:    server,
		Sender:     server,
		Tray:       tray,
		AppMenu:    menu.NewAppMenu(tray),
		TrayMenu:   menu.NewReconciler(tray, menu.English),
		LoginItems: logins,
		Browser:    browser,
		Quit:       cancel,
	})
	dispatcher.Post(dispatcher.Init)

	logging.Infof("vaultdesk %s starting (channel %s)", Version, server.Endpoint().URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return tray.Run(gctx) })
	if bridge != nil {
		g.Go(func() error {
			<-gctx.Done()
			return bridge.Stop()
		})
	}

	err = g.Wait()
	logging.Infof("vaultdesk stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openStore(cfg *config.Config, secret string) (storage.Store, error) {
	store, err := storage.Open(storage.Options{
		Backend:    cfg.Storage.Backend,
		Path:       cfg.Storage.Path,
		Passphrase: secret,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s settings store: %w", cfg.Storage.Backend, err)
	}
	return store, nil
}

func newLoginItems(cfg *config.Config, store storage.Store) (*loginitem.Manager, error) {
	strategy, err := loginitem.ForPlatform(runtime.GOOS, loginitem.Options{
		Name:    cfg.Autostart.Name,
		Exec:    cfg.Autostart.Exec,
		Version: Version,
	})
	if err != nil {
		return nil, err
	}
	return loginitem.NewManager(strategy, store), nil
}

func newBridge(cfg *config.Config, relay func(json.RawMessage)) (*nativemessaging.Bridge, error) {
	return nativemessaging.NewBridge(nativemessaging.Options{
		HostName:       cfg.NativeMessaging.HostName,
		AllowedOrigins: cfg.NativeMessaging.AllowedOrigins,
		Endpoint:       cfg.NativeMessaging.Endpoint,
	}, relay)
}
