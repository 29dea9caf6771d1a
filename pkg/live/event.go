package live

import (
	"github.com/avatarops-ai/avatarops/pkg/types"
)

// Wire event types delivered by the streaming service.
const (
	EVENT_STREAM_READY        = "stream.ready"
	EVENT_STREAM_DISCONNECTED = "stream.disconnected"
	EVENT_TRANSCRIPT_PARTIAL  = "transcript.partial"
	EVENT_TRANSCRIPT_FINAL    = "transcript.final"
)

type EventKind int

const (
	EventFragment EventKind = iota + 1
	EventBoundary
	EventStreamReady
	EventStreamDisconnected
)

// Event is the single inbound unit the session reactor consumes. All
// streaming callbacks are funneled through one queue per session so the
// aggregator sees a totally ordered event stream.
type Event struct {
	Kind     EventKind
	Fragment types.PartialFragment
	// Channel carries the boundary channel for EventBoundary.
	Channel types.TranscriptChannel
	// Reason is set for EventStreamDisconnected.
	Reason string
}

// wireEvent is the JSON frame format on the streaming websocket.
type wireEvent struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type NoticeKind int

const (
	NoticeState NoticeKind = iota + 1
	NoticeMessage
)

// Notice is what a session reports outward (operator console relay).
type Notice struct {
	Kind    NoticeKind     `json:"kind"`
	State   string         `json:"state,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Message *types.Message `json:"message,omitempty"`
}
