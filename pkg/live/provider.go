package live

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type ProviderConfig struct {
	// Endpoint is the https base URL of the streaming service.
	Endpoint string `toml:"endpoint"`
	APIKey   string `toml:"api_key"`

	DialTimeout time.Duration `toml:"dial_timeout"`
	TokenTTL    time.Duration `toml:"token_ttl"`
	EventBuffer int           `toml:"event_buffer"`
}

func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Minute
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 64
	}
	return c
}

// Client talks to the external avatar streaming service. One-time session
// tokens are cached briefly so an operator page reload does not burn a new
// credential per attempt.
type Client struct {
	cfg        ProviderConfig
	httpClient *http.Client
	tokenCache types.Cache
}

// NewClient accepts a nil cache, which disables token reuse.
func NewClient(cfg ProviderConfig, tokenCache types.Cache) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.DialTimeout},
		tokenCache: tokenCache,
	}
}

type createTokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (c *Client) tokenCacheKey() string {
	return "live:stream:token:" + utils.MD5(c.cfg.APIKey)
}

// CreateToken requests a one-time session credential from the provider's
// token endpoint.
func (c *Client) CreateToken(ctx context.Context) (string, error) {
	if c.tokenCache != nil {
		if cached, err := c.tokenCache.Get(ctx, c.tokenCacheKey()); err == nil && cached != "" {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/v1/streaming/token", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed createTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	if c.tokenCache != nil {
		if err := c.tokenCache.SetEx(ctx, c.tokenCacheKey(), parsed.Data.Token, c.cfg.TokenTTL); err != nil {
			slog.Warn("failed to cache stream token", slog.String("error", err.Error()))
		}
	}
	return parsed.Data.Token, nil
}

type startFrame struct {
	Type    string             `json:"type"`
	Session types.StartOptions `json:"session"`
}

// Dial opens the streaming websocket and sends the session start payload.
// The instruction payload and a provider-side knowledge base reference are
// mutually exclusive; StartOptions carries at most one of them.
func (c *Client) Dial(ctx context.Context, token string, opts types.StartOptions) (Stream, error) {
	wsURL, err := c.websocketURL(token)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("streaming dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}

	if err := conn.WriteJSON(startFrame{Type: "session.start", Session: opts}); err != nil {
		conn.Close()
		return nil, err
	}

	ws := &wsStream{
		conn:   conn,
		events: make(chan Event, c.cfg.EventBuffer),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
	go ws.readLoop()
	return ws, nil
}

func (c *Client) websocketURL(token string) (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/streaming/session"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// wsStream adapts a gorilla websocket connection to the Stream contract.
type wsStream struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}
	// quit unblocks readLoop sends once the consumer is gone.
	quit     chan struct{}
	quitOnce sync.Once
	once     sync.Once
}

func (s *wsStream) Events() <-chan Event {
	return s.events
}

// push delivers an event to the consumer. Returns false once Close has
// signalled that nobody is reading anymore, so a full buffer cannot pin the
// read loop.
func (s *wsStream) push(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.quit:
		return false
	}
}

func (s *wsStream) readLoop() {
	defer s.once.Do(func() { close(s.events) })
	defer close(s.done)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.push(Event{Kind: EventStreamDisconnected, Reason: err.Error()})
			}
			return
		}

		ev, ok := decodeWireEvent(raw)
		if !ok {
			continue
		}
		if !s.push(ev) {
			return
		}
	}
}

// decodeWireEvent maps a provider frame to a reactor event. Unknown types and
// frames missing required fields are dropped here, logged, and never reach
// the aggregator.
func decodeWireEvent(raw []byte) (Event, bool) {
	var frame wireEvent
	if err := json.Unmarshal(raw, &frame); err != nil {
		slog.Warn("dropping undecodable stream frame", slog.String("error", err.Error()))
		return Event{}, false
	}

	switch frame.Type {
	case EVENT_STREAM_READY:
		return Event{Kind: EventStreamReady}, true
	case EVENT_STREAM_DISCONNECTED:
		return Event{Kind: EventStreamDisconnected, Reason: frame.Reason}, true
	case EVENT_TRANSCRIPT_PARTIAL:
		return Event{Kind: EventFragment, Fragment: types.PartialFragment{
			Channel: types.TranscriptChannel(frame.Channel),
			Text:    frame.Text,
		}}, true
	case EVENT_TRANSCRIPT_FINAL:
		return Event{Kind: EventBoundary, Channel: types.TranscriptChannel(frame.Channel)}, true
	default:
		slog.Warn("dropping unknown stream frame", slog.String("type", frame.Type))
		return Event{}, false
	}
}

// Close sends a close frame and waits for the provider's acknowledgment up to
// the context deadline, then force releases the connection either way.
func (s *wsStream) Close(ctx context.Context) error {
	defer s.conn.Close()
	s.quitOnce.Do(func() { close(s.quit) })

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}

	err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
