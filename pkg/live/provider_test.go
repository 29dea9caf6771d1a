package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

func Test_WsStream_PushUnblocksAfterClose(t *testing.T) {
	s := &wsStream{
		events: make(chan Event, 1),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}

	// fill the buffer; nobody is consuming
	assert.True(t, s.push(Event{Kind: EventStreamReady}))

	delivered := make(chan bool, 1)
	go func() {
		delivered <- s.push(Event{Kind: EventFragment, Fragment: types.PartialFragment{
			Channel: types.CHANNEL_USER,
			Text:    "overflow",
		}})
	}()

	select {
	case <-delivered:
		t.Fatal("push should block while the buffer is full")
	case <-time.After(50 * time.Millisecond):
	}

	s.quitOnce.Do(func() { close(s.quit) })

	select {
	case ok := <-delivered:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("push still blocked after shutdown signal")
	}
}

func Test_DecodeWireEvent(t *testing.T) {
	ev, ok := decodeWireEvent([]byte(`{"type":"transcript.partial","channel":"user","text":"hi"}`))
	assert.True(t, ok)
	assert.Equal(t, EventFragment, ev.Kind)
	assert.Equal(t, types.CHANNEL_USER, ev.Fragment.Channel)
	assert.Equal(t, "hi", ev.Fragment.Text)

	ev, ok = decodeWireEvent([]byte(`{"type":"transcript.final","channel":"avatar"}`))
	assert.True(t, ok)
	assert.Equal(t, EventBoundary, ev.Kind)
	assert.Equal(t, types.CHANNEL_AVATAR, ev.Channel)

	_, ok = decodeWireEvent([]byte(`{"type":"made.up"}`))
	assert.False(t, ok)

	_, ok = decodeWireEvent([]byte(`not json`))
	assert.False(t, ok)
}
