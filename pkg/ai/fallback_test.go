package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

func testMessages() []types.Message {
	return []types.Message{
		{Role: types.MESSAGE_ROLE_USER, Content: "I like jazz", Timestamp: 1700000000000},
		{Role: types.MESSAGE_ROLE_ASSISTANT, Content: "Great, noted.", Timestamp: 1700000010000},
	}
}

func Test_FallbackSummary_Empty(t *testing.T) {
	assert.Equal(t, "", FallbackSummary(nil))
}

func Test_FallbackSummary_Delimiters(t *testing.T) {
	summary := FallbackSummary(testMessages())

	assert.True(t, strings.HasPrefix(summary, SUMMARY_BLOCK_BEGIN))
	assert.True(t, strings.HasSuffix(summary, SUMMARY_BLOCK_END))
	assert.Contains(t, summary, "(1 from user, 1 from assistant)")
}

func Test_FallbackSummary_Topics(t *testing.T) {
	summary := FallbackSummary(testMessages())

	// "jazz" survives the stoplist and the 4-char minimum
	assert.Contains(t, summary, "jazz")
	// "like" is long enough but appears once like everything else,
	// frequency-tied words are sorted alphabetically
	assert.Contains(t, summary, "Key Topics Discussed:")
}

func Test_FallbackSummary_RecentContext(t *testing.T) {
	long := strings.Repeat("x", 400)
	messages := []types.Message{
		{Role: types.MESSAGE_ROLE_USER, Content: "first message about painting"},
		{Role: types.MESSAGE_ROLE_ASSISTANT, Content: "second"},
		{Role: types.MESSAGE_ROLE_USER, Content: "third"},
		{Role: types.MESSAGE_ROLE_ASSISTANT, Content: "fourth"},
		{Role: types.MESSAGE_ROLE_USER, Content: long},
	}

	summary := FallbackSummary(messages)

	// only the last four messages reach the recent context
	assert.NotContains(t, summary, "first message about painting")
	assert.Contains(t, summary, "second")
	// long content is truncated to 150 characters plus an ellipsis
	assert.Contains(t, summary, strings.Repeat("x", 150)+"...")
	assert.NotContains(t, summary, strings.Repeat("x", 151))
}

func Test_ExtractKeyTopics_NoContentWords(t *testing.T) {
	messages := []types.Message{
		{Role: types.MESSAGE_ROLE_USER, Content: "ok so yes no"},
	}
	assert.Equal(t, []string{"General conversation"}, extractKeyTopics(messages))
}

func Test_ExtractKeyTopics_FrequencyRanked(t *testing.T) {
	messages := []types.Message{
		{Role: types.MESSAGE_ROLE_USER, Content: "jazz jazz jazz piano piano guitar"},
	}
	topics := extractKeyTopics(messages)
	assert.Equal(t, []string{"jazz", "piano", "guitar"}, topics)
}
