// Package ipc carries commands between the host and its presentation client.
package ipc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/vaultdesk/internal/logging"
	"github.com/example/vaultdesk/internal/menu"
	"github.com/example/vaultdesk/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Clients authenticate with the bearer token, not the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server accepts one presentation client at a time. A new authenticated
// connection replaces the previous one.
type Server struct {
	endpoint  Endpoint
	token     string
	onCommand func(protocol.Command)

	mu      sync.Mutex
	current *client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewServer returns a Server that hands every decoded command to onCommand.
// onCommand runs on the connection's reader goroutine.
func NewServer(endpoint Endpoint, token string, onCommand func(protocol.Command)) *Server {
	return &Server{endpoint: endpoint, token: token, onCommand: onCommand}
}

// Endpoint exposes the listening endpoint for logging and diagnostics.
func (s *Server) Endpoint() Endpoint {
	return s.endpoint
}

// Handler returns the HTTP handler serving the messaging endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(messagingPath, s.handleMessaging)
	return mux
}

// Run listens on the endpoint and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.token == "" {
		return errors.New("ipc: channel token is empty")
	}
	listener, err := s.endpoint.Listen()
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.endpoint.String(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	logging.Infof("ipc: presentation channel listening on %s", s.endpoint.URL())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		s.disconnect()
		logging.Infof("ipc: presentation channel shutting down")
		return ctx.Err()
	case err := <-errCh:
		s.disconnect()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", s.endpoint.String(), err)
	}
}

// Connected reports whether a presentation client is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Send queues n for the current client. It is dropped when no client is
// connected or the client is not keeping up.
func (s *Server) Send(n protocol.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		logging.Errorf("ipc: encode %s: %v", n.Command, err)
		return
	}

	s.mu.Lock()
	c := s.current
	s.mu.Unlock()
	if c == nil {
		logging.Debugf("ipc: no client; dropping %s", n.Command)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		logging.Warnf("ipc: client %s send buffer full; dropping %s", c.id, n.Command)
	}
}

// Window returns a proxy for the presentation window, or nil while no client
// is connected.
func (s *Server) Window() menu.Window {
	if !s.Connected() {
		return nil
	}
	return windowProxy{server: s}
}

func (s *Server) handleMessaging(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r, nil)
	if !s.authorize(r.Header.Get("Authorization")) {
		logging.Warnf("ipc: rejected unauthorized connection from %s", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("ipc: websocket upgrade: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	replaced := s.current
	s.current = c
	s.mu.Unlock()

	if replaced != nil {
		logging.Infof("ipc: client %s replaced by %s", logging.MaskIdentifier(replaced.id), logging.MaskIdentifier(c.id))
		replaced.close()
	}
	logging.Infof("ipc: client %s connected from %s", logging.MaskIdentifier(c.id), r.RemoteAddr)

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) authorize(header string) bool {
	token, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || s.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}

func (s *Server) readPump(c *client) {
	defer s.release(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warnf("ipc: client %s read: %v", logging.MaskIdentifier(c.id), err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := protocol.Decode(data)
		if err != nil {
			logging.Warnf("ipc: client %s sent an invalid frame: %v", logging.MaskIdentifier(c.id), err)
			continue
		}
		if s.onCommand != nil {
			s.onCommand(cmd)
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Warnf("ipc: client %s write: %v", logging.MaskIdentifier(c.id), err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// release detaches c if it is still the current client.
func (s *Server) release(c *client) {
	s.mu.Lock()
	if s.current == c {
		s.current = nil
	}
	s.mu.Unlock()
	c.close()
	logging.Infof("ipc: client %s disconnected", logging.MaskIdentifier(c.id))
}

func (s *Server) disconnect() {
	s.mu.Lock()
	c := s.current
	s.current = nil
	s.mu.Unlock()
	if c != nil {
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		// Leave the write pump time to send the close frame.
		time.AfterFunc(writeWait/10, func() { _ = c.conn.Close() })
	})
}

type windowProxy struct {
	server *Server
}

func (w windowProxy) Minimize() { w.server.Send(protocol.WindowControl(protocol.WindowMinimize)) }
func (w windowProxy) Focus()    { w.server.Send(protocol.WindowControl(protocol.WindowFocus)) }
func (w windowProxy) Restore()  { w.server.Send(protocol.WindowControl(protocol.WindowRestore)) }
func (w windowProxy) Hide()     { w.server.Send(protocol.WindowControl(protocol.WindowHide)) }
func (w windowProxy) Show()     { w.server.Send(protocol.WindowControl(protocol.WindowShow)) }
