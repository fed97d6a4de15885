package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/net/websocket"
	"golang.org/x/oauth2"
)

// State is the connection state of a [Manager].
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Event names pushed by the server.
const (
	EventNotification     = "notification"
	EventNotificationRead = "notification_read"
	EventUnreadCount      = "unread_count"
)

// Frame is one JSON message on the channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives decoded events and state changes. Calls come from the
// manager's goroutine, one at a time.
type Handler interface {
	OnNotification(n models.Notification)
	OnNotificationRead(id string)
	OnUnreadCount(count int)
	OnStateChange(s State)
}

// Options configures a [Manager].
type Options struct {
	URL string
	// Origin is sent in the handshake; defaults to the URL with an http scheme.
	Origin string
	// Tokens supplies the access token used at each dial.
	Tokens oauth2.TokenSource

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	// MaxReconnectAttempts bounds consecutive failed attempts; 0 retries forever.
	MaxReconnectAttempts int

	Logger *log.Logger
	// Sleep waits between attempts. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Manager owns at most one live notification connection and reconnects it
// with exponential backoff.
type Manager struct {
	opts    Options
	handler Handler
	logger  *log.Logger

	mu      sync.Mutex
	state   State
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewManager creates a disconnected [Manager].
func NewManager(opts Options, h Handler) *Manager {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.MaxReconnectDelay <= 0 {
		opts.MaxReconnectDelay = 30 * time.Second
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	done := make(chan struct{})
	close(done)
	return &Manager{
		opts:    opts,
		handler: h,
		logger:  logger.With("component", "notify"),
		done:    done,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect starts the connection loop. It is a no-op while the loop is running.
//
// The loop stops when ctx is done, [Manager.Close] is called, or the reconnect
// attempts are exhausted.
func (m *Manager) Connect(ctx context.Context) error {
	if m.opts.URL == "" {
		return fmt.Errorf("%w: notification url is not configured", shared.ErrMissingConfig)
	}
	if m.accessToken() == "" {
		return shared.ErrNotAuthenticated
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	m.err = nil
	done := m.done
	m.mu.Unlock()

	go m.run(loopCtx, done)
	return nil
}

// Close stops the loop, closes the connection and waits for the loop to exit.
func (m *Manager) Close() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}

// Done is closed when the loop exits.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Err returns why the loop stopped, nil after [Manager.Close] or cancellation.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	var loopErr error
	defer func() {
		m.setState(Disconnected)
		m.mu.Lock()
		m.running = false
		m.err = loopErr
		m.mu.Unlock()
		close(done)
	}()

	failures := 0
	for {
		m.setState(Connecting)
		conn, err := m.dial(ctx)
		if err == nil {
			failures = 0
			m.setState(Connected)
			m.logger.Info("notification channel connected", "url", m.opts.URL)
			err = m.read(ctx, conn)
			conn.Close()
		}
		if ctx.Err() != nil {
			return
		}

		m.setState(Disconnected)
		failures++
		if max := m.opts.MaxReconnectAttempts; max > 0 && failures > max {
			loopErr = fmt.Errorf("%w after %d attempts: %w", shared.ErrReconnectExhausted, max, err)
			m.logger.Error("giving up on notification channel", "error", err)
			return
		}

		delay := Backoff(m.opts.ReconnectDelay, m.opts.MaxReconnectDelay, failures-1)
		m.logger.Warn("notification channel lost, reconnecting", "error", err, "attempt", failures, "delay", delay)
		if err := m.opts.Sleep(ctx, delay); err != nil {
			return
		}
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	origin := m.opts.Origin
	if origin == "" {
		origin = httpOrigin(m.opts.URL)
	}
	cfg, err := websocket.NewConfig(m.opts.URL, origin)
	if err != nil {
		return nil, fmt.Errorf("invalid notification url: %w", err)
	}
	access := m.accessToken()
	if access == "" {
		return nil, shared.ErrNotAuthenticated
	}
	cfg.Header.Set("Authorization", "Bearer "+access)
	return cfg.DialContext(ctx)
}

// read dispatches frames until the connection fails or ctx is done.
func (m *Manager) read(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var frame Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			return err
		}
		if err := m.dispatch(frame); err != nil {
			m.logger.Warn("dropping malformed frame", "event", frame.Event, "error", err)
		}
	}
}

func (m *Manager) dispatch(f Frame) error {
	if m.handler == nil {
		return nil
	}
	switch f.Event {
	case EventNotification:
		var n models.Notification
		if err := json.Unmarshal(f.Data, &n); err != nil {
			return err
		}
		m.handler.OnNotification(n)
	case EventNotificationRead:
		id, err := decodeID(f.Data)
		if err != nil {
			return err
		}
		m.handler.OnNotificationRead(id)
	case EventUnreadCount:
		count, err := decodeCount(f.Data)
		if err != nil {
			return err
		}
		m.handler.OnUnreadCount(count)
	default:
		m.logger.Debug("ignoring unknown event", "event", f.Event)
	}
	return nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()

	if changed && m.handler != nil {
		m.handler.OnStateChange(s)
	}
}

func (m *Manager) accessToken() string {
	if m.opts.Tokens == nil {
		return ""
	}
	tok, err := m.opts.Tokens.Token()
	if err != nil || tok == nil {
		return ""
	}
	return tok.AccessToken
}

// decodeID accepts "id", {"id": "..."} or {"notificationId": "..."}.
func decodeID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil && id != "" {
		return id, nil
	}
	var payload struct {
		ID             string `json:"id"`
		NotificationID string `json:"notificationId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	if payload.ID != "" {
		return payload.ID, nil
	}
	if payload.NotificationID != "" {
		return payload.NotificationID, nil
	}
	return "", fmt.Errorf("%w: notification id missing", shared.ErrInvalidInput)
}

// decodeCount accepts 3, "3", {"count": 3} or {"unreadCount": 3}.
func decodeCount(data json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strconv.Atoi(s)
	}
	var payload struct {
		Count       *int `json:"count"`
		UnreadCount *int `json:"unreadCount"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, err
	}
	switch {
	case payload.Count != nil:
		return *payload.Count, nil
	case payload.UnreadCount != nil:
		return *payload.UnreadCount, nil
	default:
		return 0, fmt.Errorf("%w: unread count missing", shared.ErrInvalidInput)
	}
}

// httpOrigin maps ws(s)://host/path to http(s)://host.
func httpOrigin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "http://localhost/"
	}
	scheme := "http"
	if u.Scheme == "wss" || u.Scheme == "https" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/"
}

// Backoff returns base doubled attempt times, capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for range attempt {
		d *= 2
		if max > 0 && d >= max {
			return max
		}
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
