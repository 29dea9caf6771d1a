package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

// Provider is the external avatar streaming service: a one-time token
// endpoint plus a live event stream.
type Provider interface {
	CreateToken(ctx context.Context) (string, error)
	Dial(ctx context.Context, token string, opts types.StartOptions) (Stream, error)
}

// Stream is a live session's event channel. Events is closed when the
// underlying connection dies; Close must respect the context deadline.
type Stream interface {
	Events() <-chan Event
	Close(ctx context.Context) error
}

// MessageSink persists finalized messages. Implemented by the conversation
// orchestrator so the append-only log stays under one writer.
type MessageSink interface {
	AppendMessage(ctx context.Context, conversationID string, role types.MessageRole, content string) (*types.Message, error)
}

type Metrics interface {
	SessionStarted()
	SessionEnded()
	FragmentReceived(channel string)
	MessageFinalized(channel string)
}

type NoopMetrics struct{}

func (NoopMetrics) SessionStarted()         {}
func (NoopMetrics) SessionEnded()           {}
func (NoopMetrics) FragmentReceived(string) {}
func (NoopMetrics) MessageFinalized(string) {}

type SessionConfig struct {
	// CloseTimeout bounds the wait for the provider's close acknowledgment
	// and for the reactor to drain on stop. Local resources are force
	// released when it expires.
	CloseTimeout time.Duration
	// PersistTimeout bounds a single message append.
	PersistTimeout time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.CloseTimeout == 0 {
		c.CloseTimeout = 5 * time.Second
	}
	if c.PersistTimeout == 0 {
		c.PersistTimeout = 5 * time.Second
	}
	return c
}

// Session owns the lifecycle of one live streaming session:
// INACTIVE -> CONNECTING -> CONNECTED -> INACTIVE. A single reactor goroutine
// consumes the inbound event queue and is the only writer to the aggregator,
// so fragment ordering within a channel is total.
type Session struct {
	conversationID string
	provider       Provider
	sink           MessageSink
	metrics        Metrics
	cfg            SessionConfig

	agg    *Aggregator
	notify func(Notice)

	state  atomic.Int32
	mu     sync.Mutex
	stream Stream
	stopCh chan struct{}
	doneCh chan struct{}
	stop   sync.Once
	// ended dedupes teardown accounting when Stop races a disconnect already
	// queued on the stream.
	ended sync.Once
}

// NewSession wires a session for one conversation. notify may be nil.
func NewSession(conversationID string, provider Provider, sink MessageSink, metrics Metrics, notify func(Notice), cfg SessionConfig) *Session {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Session{
		conversationID: conversationID,
		provider:       provider,
		sink:           sink,
		metrics:        metrics,
		cfg:            cfg.withDefaults(),
		agg:            NewAggregator(conversationID),
		notify:         notify,
	}
}

func (s *Session) State() types.SessionState {
	return types.SessionState(s.state.Load())
}

func (s *Session) setState(state types.SessionState) {
	s.state.Store(int32(state))
	s.notify(Notice{Kind: NoticeState, State: state.String()})
}

// Start requests a one-time credential, opens the streaming session and
// begins consuming events. Only valid from INACTIVE; any failure reverts the
// state and surfaces the error so the caller can retry.
func (s *Session) Start(ctx context.Context, opts types.StartOptions) error {
	s.mu.Lock()
	if s.State() != types.SESSION_STATE_INACTIVE {
		s.mu.Unlock()
		return errors.New("live.Session.Start.state", i18n.ERROR_SESSION_IN_PROGRESS, nil).Code(http.StatusConflict)
	}
	s.setState(types.SESSION_STATE_CONNECTING)
	// Fresh buffers per live session: nothing from a previous run may leak
	// into the next utterance.
	s.agg = NewAggregator(s.conversationID)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.stop = sync.Once{}
	s.ended = sync.Once{}
	s.mu.Unlock()

	token, err := s.provider.CreateToken(ctx)
	if err != nil {
		s.setState(types.SESSION_STATE_INACTIVE)
		return errors.New("live.Session.Start.CreateToken", i18n.ERROR_STREAM_UNAVAILABLE, err).Code(http.StatusBadGateway)
	}

	stream, err := s.provider.Dial(ctx, token, opts)
	if err != nil {
		s.setState(types.SESSION_STATE_INACTIVE)
		return errors.New("live.Session.Start.Dial", i18n.ERROR_STREAM_UNAVAILABLE, err).Code(http.StatusBadGateway)
	}

	s.mu.Lock()
	// Stop may have aborted the start while the handshake was in flight.
	if s.State() != types.SESSION_STATE_CONNECTING {
		s.mu.Unlock()
		closeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.CloseTimeout)
		defer cancel()
		_ = stream.Close(closeCtx)
		return errors.New("live.Session.Start.aborted", i18n.ERROR_STREAM_UNAVAILABLE, nil).Code(http.StatusConflict)
	}
	s.stream = stream
	s.setState(types.SESSION_STATE_CONNECTED)
	s.mu.Unlock()

	s.metrics.SessionStarted()
	go s.run(stream)
	return nil
}

// run is the session reactor: the single consumer of the inbound queue.
func (s *Session) run(stream Stream) {
	defer close(s.doneCh)

	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				s.onDisconnect("event stream closed")
				return
			}
			if done := s.handle(ev); done {
				return
			}
		case <-s.stopCh:
			// Explicit stop: both buffers get an implicit final boundary so a
			// trailing partial utterance survives teardown.
			for _, msg := range s.agg.Flush() {
				s.persist(msg)
			}
			return
		}
	}
}

func (s *Session) handle(ev Event) bool {
	switch ev.Kind {
	case EventStreamReady:
		s.notify(Notice{Kind: NoticeState, State: s.State().String()})
	case EventFragment:
		if !ev.Fragment.Channel.Valid() || ev.Fragment.Text == "" {
			slog.Warn("dropping malformed fragment event",
				slog.String("conversation", s.conversationID),
				slog.String("channel", string(ev.Fragment.Channel)))
			return false
		}
		s.metrics.FragmentReceived(string(ev.Fragment.Channel))
		s.agg.Append(ev.Fragment)
	case EventBoundary:
		if !ev.Channel.Valid() {
			slog.Warn("dropping malformed boundary event", slog.String("conversation", s.conversationID))
			return false
		}
		if msg, ok := s.agg.Finalize(ev.Channel); ok {
			s.persist(msg)
		}
	case EventStreamDisconnected:
		s.onDisconnect(ev.Reason)
		return true
	}
	return false
}

func (s *Session) persist(msg types.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	saved, err := s.sink.AppendMessage(ctx, msg.ConversationID, msg.Role, msg.Content)
	if err != nil {
		slog.Error("failed to persist finalized message",
			slog.String("conversation", msg.ConversationID),
			slog.String("role", string(msg.Role)),
			slog.String("error", err.Error()))
		saved = &msg
	}
	s.metrics.MessageFinalized(string(msg.Role))
	s.notify(Notice{Kind: NoticeMessage, Message: saved})
}

// onDisconnect handles an unsolicited disconnect from the provider: immediate
// transition to INACTIVE, reported but never retried here. Reconnection is a
// user-initiated Start.
func (s *Session) onDisconnect(reason string) {
	slog.Warn("streaming session disconnected",
		slog.String("conversation", s.conversationID),
		slog.String("reason", reason))

	s.mu.Lock()
	s.stream = nil
	s.state.Store(int32(types.SESSION_STATE_INACTIVE))
	s.mu.Unlock()

	s.ended.Do(s.metrics.SessionEnded)
	s.notify(Notice{Kind: NoticeState, State: types.SESSION_STATE_INACTIVE.String(), Reason: reason})
}

// Stop flushes both aggregator buffers and releases the stream. Valid from
// CONNECTED or CONNECTING; calling it on an INACTIVE session is a no-op so
// duplicate teardown calls stay harmless. Completes even if the provider's
// close acknowledgment never arrives.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	state := s.State()
	if state == types.SESSION_STATE_INACTIVE {
		s.mu.Unlock()
		return nil
	}

	if state == types.SESSION_STATE_CONNECTING {
		// Abort a start still in flight; Start notices the state change after
		// its handshake returns and releases the stream itself.
		s.state.Store(int32(types.SESSION_STATE_INACTIVE))
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeState, State: types.SESSION_STATE_INACTIVE.String()})
		return nil
	}

	stream := s.stream
	s.stream = nil
	s.stop.Do(func() { close(s.stopCh) })
	s.mu.Unlock()

	select {
	case <-s.doneCh:
	case <-time.After(s.cfg.CloseTimeout):
		slog.Warn("session reactor did not drain in time, force releasing",
			slog.String("conversation", s.conversationID))
	}

	if stream != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.CloseTimeout)
		defer cancel()
		if err := stream.Close(closeCtx); err != nil {
			slog.Warn("streaming close acknowledgment not received",
				slog.String("conversation", s.conversationID),
				slog.String("error", err.Error()))
		}
	}

	s.state.Store(int32(types.SESSION_STATE_INACTIVE))
	s.ended.Do(s.metrics.SessionEnded)
	s.notify(Notice{Kind: NoticeState, State: types.SESSION_STATE_INACTIVE.String()})
	return nil
}
