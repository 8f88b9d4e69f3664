package nativemessaging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sync"

	"github.com/example/vaultdesk/internal/logging"
)

const maxFrameSize = 1 << 20

// Options configures a Bridge.
type Options struct {
	HostName    string
	Description string
	// ProxyPath is the executable browsers launch. Defaults to this binary.
	ProxyPath      string
	AllowedOrigins []string
	// Endpoint is the loopback address the proxy relays frames to.
	Endpoint string

	GOOS      string
	Home      string
	ConfigDir string
}

// Bridge writes browser manifests and relays frames from running proxies to
// the host.
type Bridge struct {
	opts      Options
	onMessage func(json.RawMessage)

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewBridge returns a Bridge that hands every relayed frame to onMessage.
// onMessage runs on a connection goroutine.
func NewBridge(opts Options, onMessage func(json.RawMessage)) (*Bridge, error) {
	if opts.HostName == "" {
		opts.HostName = "com.example.vaultdesk"
	}
	if opts.Description == "" {
		opts.Description = "Vaultdesk native messaging host"
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.ProxyPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		opts.ProxyPath = exe
	}
	if opts.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		opts.Home = home
	}
	if opts.ConfigDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		opts.ConfigDir = dir
	}
	return &Bridge{opts: opts, onMessage: onMessage, conns: make(map[net.Conn]struct{})}, nil
}

// Listen starts accepting proxy connections. It is a no-op while already
// listening.
func (b *Bridge) Listen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener != nil {
		return nil
	}
	if b.opts.Endpoint == "" {
		return errors.New("nativemessaging: no endpoint configured")
	}

	listener, err := net.Listen("tcp", b.opts.Endpoint)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", b.opts.Endpoint, err)
	}
	b.listener = listener
	b.wg.Add(1)
	go b.acceptLoop(listener)
	logging.Infof("nativemessaging: listening on %s", listener.Addr())
	return nil
}

// Addr returns the listening address, or nil when stopped.
func (b *Bridge) Addr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

// Stop closes the listener and every proxy connection, then waits for the
// connection goroutines to exit.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	listener := b.listener
	b.listener = nil
	for conn := range b.conns {
		_ = conn.Close()
	}
	b.mu.Unlock()

	if listener == nil {
		return nil
	}
	err := listener.Close()
	b.wg.Wait()
	logging.Infof("nativemessaging: listener stopped")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}

func (b *Bridge) acceptLoop(listener net.Listener) {
	defer b.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logging.Warnf("nativemessaging: accept: %v", err)
			}
			return
		}

		b.mu.Lock()
		if b.listener != listener {
			b.mu.Unlock()
			_ = conn.Close()
			return
		}
		b.conns[conn] = struct{}{}
		b.wg.Add(1)
		b.mu.Unlock()

		go b.handleConn(conn)
	}
}

func (b *Bridge) handleConn(conn net.Conn) {
	defer b.wg.Done()
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			logging.Warnf("nativemessaging: dropping invalid frame from %s", conn.RemoteAddr())
			continue
		}
		if b.onMessage != nil {
			b.onMessage(append(json.RawMessage(nil), line...))
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Warnf("nativemessaging: read from %s: %v", conn.RemoteAddr(), err)
	}
}
