// Package websocket owns the push connection to the trading backend: one
// live connection per authenticated session, delivered to the owner through
// callbacks. The only protocol behavior handled here is the keepalive
// exchange; every other payload passes through untouched.
package websocket

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/metrics"
)

var wsLog = logrus.WithField("component", "websocket")

// ErrAuthRequired means Dial was called without a session; no connection
// attempt is made in that case.
var ErrAuthRequired = errors.New("websocket: authentication required")

// Keepalive wire literals. The server probes with "ping"; the client must
// answer "pong" or the server reclaims the connection as idle.
const (
	keepaliveProbe = "ping"
	keepaliveAck   = "pong"
)

// CloseInfo describes why the connection ended.
type CloseInfo struct {
	Code   int
	Reason string
}

// Handlers are the owner-facing callbacks. All are optional. They are
// invoked from the read loop goroutine, one at a time.
type Handlers struct {
	OnOpen    func()
	OnMessage func(raw string)
	OnError   func(err error)
	OnClose   func(info CloseInfo)
}

// Client is a single live push connection.
type Client struct {
	url      string
	handlers Handlers
	policy   ReconnectPolicy
	dialer   *websocket.Dialer

	writeMu sync.Mutex // guards writes (keepalive ack vs close frame)
	mu      sync.Mutex
	conn    *websocket.Conn
	closed  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithReconnectPolicy installs a reconnection policy. The default is
// NoReconnect: a closed connection stays closed and the owner decides.
func WithReconnectPolicy(p ReconnectPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.policy = p
		}
	}
}

// Dial opens the push connection for the given session and starts the read
// loop. Exactly one connection should be open per session; callers own the
// returned client and must Close it on logout or teardown.
func Dial(ctx context.Context, baseURL string, session domain.Session, handlers Handlers, opts ...Option) (*Client, error) {
	if !session.Valid() {
		return nil, ErrAuthRequired
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid websocket URL")
	}
	q := u.Query()
	q.Set("token", session.Token)
	u.RawQuery = q.Encode()

	c := &Client{
		url:      u.String(),
		handlers: handlers,
		policy:   NoReconnect(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrap(err, "websocket dial failed")
	}
	c.conn = conn

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.readLoop(runCtx)

	wsLog.WithField("url", u.Host).Info("push connection open")
	if c.handlers.OnOpen != nil {
		c.handlers.OnOpen()
	}
	return c, nil
}

// Close tears down the connection. It is idempotent and safe to call from
// any goroutine.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		c.writeMu.Lock()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		conn.Close()
	}

	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		wsLog.Warn("timed out waiting for read loop to exit")
	}
	wsLog.Info("push connection closed")
}

// IsClosed reports whether Close was called or the connection ended.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)

	attempt := 0
	for {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()
		if closed || conn == nil {
			return
		}

		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if c.ownerClosed() || ctx.Err() != nil {
				return
			}

			info := closeInfo(err)
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				wsLog.WithField("code", info.Code).Info("server closed connection")
			} else {
				wsLog.WithError(err).Warn("read failed")
				if c.handlers.OnError != nil {
					c.handlers.OnError(err)
				}
			}

			attempt++
			if !c.redial(ctx, attempt) {
				c.mu.Lock()
				c.closed = true
				c.mu.Unlock()
				if c.handlers.OnClose != nil {
					c.handlers.OnClose(info)
				}
				return
			}
			attempt = 0
			continue
		}

		if msgType != websocket.TextMessage {
			continue
		}
		raw := string(payload)

		// Keepalive probes are answered here and never forwarded.
		if raw == keepaliveProbe {
			c.writeMu.Lock()
			werr := conn.WriteMessage(websocket.TextMessage, []byte(keepaliveAck))
			c.writeMu.Unlock()
			if werr != nil && !c.ownerClosed() {
				wsLog.WithError(werr).Warn("keepalive ack failed")
				if c.handlers.OnError != nil {
					c.handlers.OnError(werr)
				}
			}
			continue
		}

		if c.handlers.OnMessage != nil {
			c.handlers.OnMessage(raw)
		}
	}
}

// redial asks the policy for permission and, if granted, replaces the dead
// connection. Returns false when the policy declines or dialing fails.
func (c *Client) redial(ctx context.Context, attempt int) bool {
	delay, retry := c.policy.NextDelay(attempt)
	if !retry {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		wsLog.WithError(err).WithField("attempt", attempt).Warn("reconnect failed")
		if c.handlers.OnError != nil {
			c.handlers.OnError(err)
		}
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return false
	}
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	metrics.Reconnects.Add(1)
	wsLog.WithField("attempt", attempt).Info("reconnected")
	if c.handlers.OnOpen != nil {
		c.handlers.OnOpen()
	}
	return true
}

func (c *Client) ownerClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func closeInfo(err error) CloseInfo {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return CloseInfo{Code: ce.Code, Reason: ce.Text}
	}
	return CloseInfo{Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
}
