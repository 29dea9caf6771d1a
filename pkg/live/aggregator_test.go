package live

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

func testAggregator() *Aggregator {
	agg := NewAggregator("conv-1")
	seq := 0
	agg.idgen = func() string {
		seq++
		return fmt.Sprintf("msg-%d", seq)
	}
	agg.now = func() time.Time {
		return time.UnixMilli(1700000000000)
	}
	return agg
}

func Test_Aggregator_ConcatInArrivalOrder(t *testing.T) {
	agg := testAggregator()

	for _, text := range []string{"I ", "like ", "jazz"} {
		agg.Append(types.PartialFragment{Channel: types.CHANNEL_USER, Text: text})
	}

	msg, ok := agg.Finalize(types.CHANNEL_USER)
	assert.True(t, ok)
	assert.Equal(t, "I like jazz", msg.Content)
	assert.Equal(t, types.MESSAGE_ROLE_USER, msg.Role)
	assert.Equal(t, "conv-1", msg.ConversationID)
	assert.Equal(t, int64(1700000000000), msg.Timestamp)
}

func Test_Aggregator_EmptyBoundary(t *testing.T) {
	agg := testAggregator()

	_, ok := agg.Finalize(types.CHANNEL_USER)
	assert.False(t, ok)

	// duplicate boundary after a finalize is just as harmless
	agg.Append(types.PartialFragment{Channel: types.CHANNEL_USER, Text: "hello"})
	_, ok = agg.Finalize(types.CHANNEL_USER)
	assert.True(t, ok)
	_, ok = agg.Finalize(types.CHANNEL_USER)
	assert.False(t, ok)
}

func Test_Aggregator_ChannelIndependence(t *testing.T) {
	agg := testAggregator()

	agg.Append(types.PartialFragment{Channel: types.CHANNEL_USER, Text: "question"})
	agg.Append(types.PartialFragment{Channel: types.CHANNEL_AVATAR, Text: "answer"})

	userMsg, ok := agg.Finalize(types.CHANNEL_USER)
	assert.True(t, ok)
	assert.Equal(t, "question", userMsg.Content)

	// the avatar buffer is untouched by the user finalize
	avatarMsg, ok := agg.Finalize(types.CHANNEL_AVATAR)
	assert.True(t, ok)
	assert.Equal(t, "answer", avatarMsg.Content)
	assert.Equal(t, types.MESSAGE_ROLE_ASSISTANT, avatarMsg.Role)
}

func Test_Aggregator_UnknownChannelDropped(t *testing.T) {
	agg := testAggregator()

	agg.Append(types.PartialFragment{Channel: "narrator", Text: "ignored"})
	_, ok := agg.Finalize(types.CHANNEL_USER)
	assert.False(t, ok)
}

func Test_Aggregator_FlushBothBuffers(t *testing.T) {
	agg := testAggregator()

	agg.Append(types.PartialFragment{Channel: types.CHANNEL_AVATAR, Text: "trailing avatar"})
	agg.Append(types.PartialFragment{Channel: types.CHANNEL_USER, Text: "trailing user"})

	out := agg.Flush()
	assert.Len(t, out, 2)
	assert.Equal(t, "trailing user", out[0].Content)
	assert.Equal(t, "trailing avatar", out[1].Content)

	assert.Empty(t, agg.Flush())
}
