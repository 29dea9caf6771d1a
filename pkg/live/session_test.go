package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	m.Run()
}

type fakeProvider struct {
	tokenErr error
	dialErr  error
	stream   *fakeStream
}

func (p *fakeProvider) CreateToken(ctx context.Context) (string, error) {
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	return "one-time-token", nil
}

func (p *fakeProvider) Dial(ctx context.Context, token string, opts types.StartOptions) (Stream, error) {
	if p.dialErr != nil {
		return nil, p.dialErr
	}
	return p.stream, nil
}

type fakeStream struct {
	events chan Event
	closed bool
	mu     sync.Mutex
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan Event, 16)}
}

func (s *fakeStream) Events() <-chan Event {
	return s.events
}

func (s *fakeStream) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type recordingSink struct {
	mu       sync.Mutex
	messages []types.Message
}

func (s *recordingSink) AppendMessage(ctx context.Context, conversationID string, role types.MessageRole, content string) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := types.Message{
		ID:             "persisted",
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now().UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *recordingSink) all() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Message(nil), s.messages...)
}

func testSession(provider Provider, sink MessageSink) *Session {
	return NewSession("conv-1", provider, sink, nil, nil, SessionConfig{
		CloseTimeout:   time.Second,
		PersistTimeout: time.Second,
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func Test_Session_StartAndFinalize(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	session := testSession(&fakeProvider{stream: stream}, sink)

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{AvatarID: "ava"}))
	assert.Equal(t, types.SESSION_STATE_CONNECTED, session.State())

	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "I like "}}
	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "jazz"}}
	stream.events <- Event{Kind: EventBoundary, Channel: types.CHANNEL_USER}

	waitFor(t, func() bool { return len(sink.all()) == 1 })
	assert.Equal(t, "I like jazz", sink.all()[0].Content)
	assert.Equal(t, types.MESSAGE_ROLE_USER, sink.all()[0].Role)

	assert.NoError(t, session.Stop(context.Background()))
	assert.Equal(t, types.SESSION_STATE_INACTIVE, session.State())
	assert.True(t, stream.isClosed())
}

func Test_Session_StartOnlyFromInactive(t *testing.T) {
	stream := newFakeStream()
	session := testSession(&fakeProvider{stream: stream}, &recordingSink{})

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))
	err := session.Start(context.Background(), types.StartOptions{})
	assert.Error(t, err)

	assert.NoError(t, session.Stop(context.Background()))
}

func Test_Session_StartFailureRevertsState(t *testing.T) {
	session := testSession(&fakeProvider{dialErr: errors.New("handshake refused")}, &recordingSink{})

	assert.Error(t, session.Start(context.Background(), types.StartOptions{}))
	assert.Equal(t, types.SESSION_STATE_INACTIVE, session.State())

	// token failures revert just the same
	session = testSession(&fakeProvider{tokenErr: errors.New("token endpoint down")}, &recordingSink{})
	assert.Error(t, session.Start(context.Background(), types.StartOptions{}))
	assert.Equal(t, types.SESSION_STATE_INACTIVE, session.State())
}

func Test_Session_StopFlushesTrailingPartials(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	session := testSession(&fakeProvider{stream: stream}, sink)

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))

	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "unfinished user"}}
	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_AVATAR, Text: "unfinished avatar"}}

	// make sure the reactor consumed both fragments before stopping
	waitFor(t, func() bool { return len(stream.events) == 0 })

	assert.NoError(t, session.Stop(context.Background()))

	messages := sink.all()
	assert.Len(t, messages, 2)
	assert.Equal(t, "unfinished user", messages[0].Content)
	assert.Equal(t, "unfinished avatar", messages[1].Content)
}

func Test_Session_StopWhileInactiveIsNoop(t *testing.T) {
	session := testSession(&fakeProvider{stream: newFakeStream()}, &recordingSink{})
	assert.NoError(t, session.Stop(context.Background()))
	assert.Equal(t, types.SESSION_STATE_INACTIVE, session.State())
}

func Test_Session_DisconnectForcesInactiveAndRestartAccepted(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	session := testSession(&fakeProvider{stream: stream}, sink)

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))

	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "lost partial"}}
	stream.events <- Event{Kind: EventStreamDisconnected, Reason: "network"}

	waitFor(t, func() bool { return session.State() == types.SESSION_STATE_INACTIVE })

	// unsolicited disconnect discards unfinalized buffers
	assert.Empty(t, sink.all())

	// stale state must not block a user-initiated restart
	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))
	assert.Equal(t, types.SESSION_STATE_CONNECTED, session.State())
	assert.NoError(t, session.Stop(context.Background()))
}

func Test_Session_RestartGetsFreshBuffers(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	session := testSession(&fakeProvider{stream: stream}, sink)

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))
	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "stale "}}
	stream.events <- Event{Kind: EventStreamDisconnected, Reason: "network"}
	waitFor(t, func() bool { return session.State() == types.SESSION_STATE_INACTIVE })

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))
	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER, Text: "fresh"}}
	stream.events <- Event{Kind: EventBoundary, Channel: types.CHANNEL_USER}

	waitFor(t, func() bool { return len(sink.all()) == 1 })
	assert.Equal(t, "fresh", sink.all()[0].Content)

	assert.NoError(t, session.Stop(context.Background()))
}

func Test_Session_MalformedEventsDropped(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	session := testSession(&fakeProvider{stream: stream}, sink)

	assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))

	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: "bogus", Text: "x"}}
	stream.events <- Event{Kind: EventFragment, Fragment: types.PartialFragment{Channel: types.CHANNEL_USER}}
	stream.events <- Event{Kind: EventBoundary, Channel: "bogus"}
	stream.events <- Event{Kind: EventBoundary, Channel: types.CHANNEL_USER}

	waitFor(t, func() bool { return len(stream.events) == 0 })

	assert.NoError(t, session.Stop(context.Background()))
	assert.Empty(t, sink.all())
}

type countingMetrics struct {
	mu      sync.Mutex
	started int
	ended   int
}

func (m *countingMetrics) SessionStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *countingMetrics) SessionEnded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended++
}

func (m *countingMetrics) FragmentReceived(string) {}
func (m *countingMetrics) MessageFinalized(string) {}

func (m *countingMetrics) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started, m.ended
}

// A disconnect already queued on the stream when Stop is called must not
// produce a second end-of-session decrement, or the live session gauge
// drifts negative over time.
func Test_Session_StopRacingDisconnectEndsOnce(t *testing.T) {
	metrics := &countingMetrics{}
	provider := &fakeProvider{}
	sink := &recordingSink{}
	session := NewSession("conv-1", provider, sink, metrics, nil, SessionConfig{
		CloseTimeout:   time.Second,
		PersistTimeout: time.Second,
	})

	const rounds = 100
	for i := 0; i < rounds; i++ {
		provider.stream = newFakeStream()
		assert.NoError(t, session.Start(context.Background(), types.StartOptions{}))
		provider.stream.events <- Event{Kind: EventStreamDisconnected, Reason: "network"}
		assert.NoError(t, session.Stop(context.Background()))
		waitFor(t, func() bool { return session.State() == types.SESSION_STATE_INACTIVE })
	}

	started, ended := metrics.counts()
	assert.Equal(t, rounds, started)
	assert.Equal(t, started, ended)
}

func Test_Registry_OneSessionPerConversation(t *testing.T) {
	registry := NewRegistry()
	built := 0
	build := func() *Session {
		built++
		return testSession(&fakeProvider{stream: newFakeStream()}, &recordingSink{})
	}

	first := registry.Acquire("conv-1", build)
	second := registry.Acquire("conv-1", build)
	assert.Same(t, first, second)
	assert.Equal(t, 1, built)
	assert.Equal(t, 1, registry.Count())

	registry.Release("conv-1")
	assert.Equal(t, 0, registry.Count())
	_, ok := registry.Get("conv-1")
	assert.False(t, ok)
}
