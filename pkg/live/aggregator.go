package live

import (
	"strings"
	"time"

	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

// Aggregator turns per-channel partial fragments into discrete finalized
// messages. One mutable accumulation buffer per channel; the two buffers are
// fully independent. Not safe for concurrent use: the session reactor is the
// only caller.
type Aggregator struct {
	conversationID string
	buffers        map[types.TranscriptChannel]*strings.Builder

	idgen func() string
	now   func() time.Time
}

func NewAggregator(conversationID string) *Aggregator {
	return &Aggregator{
		conversationID: conversationID,
		buffers: map[types.TranscriptChannel]*strings.Builder{
			types.CHANNEL_USER:   {},
			types.CHANNEL_AVATAR: {},
		},
		idgen: utils.GenUniqIDStr,
		now:   time.Now,
	}
}

// Append concatenates a non-final fragment onto its channel buffer. The
// upstream service guarantees non-overlapping increments, so no deduplication
// happens here.
func (a *Aggregator) Append(fragment types.PartialFragment) {
	buf, ok := a.buffers[fragment.Channel]
	if !ok {
		return
	}
	buf.WriteString(fragment.Text)
}

// Finalize closes the current utterance on a channel. An empty buffer emits
// nothing, which makes duplicate boundary signals harmless.
func (a *Aggregator) Finalize(channel types.TranscriptChannel) (types.Message, bool) {
	buf, ok := a.buffers[channel]
	if !ok || buf.Len() == 0 {
		return types.Message{}, false
	}

	msg := types.Message{
		ID:             a.idgen(),
		ConversationID: a.conversationID,
		Role:           channel.Role(),
		Content:        buf.String(),
		Timestamp:      a.now().UnixMilli(),
	}
	buf.Reset()
	return msg, true
}

// Flush treats both buffers as implicitly finalized, in channel order user
// then avatar. Called on session stop so a trailing partial utterance is not
// lost.
func (a *Aggregator) Flush() []types.Message {
	var out []types.Message
	for _, ch := range []types.TranscriptChannel{types.CHANNEL_USER, types.CHANNEL_AVATAR} {
		if msg, ok := a.Finalize(ch); ok {
			out = append(out, msg)
		}
	}
	return out
}
