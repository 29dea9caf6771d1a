package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

func Test_ComposeSessionContext_EmptySummary(t *testing.T) {
	basePrompt := "You are a friendly museum guide."
	assert.Equal(t, basePrompt, ComposeSessionContext(basePrompt, ""))
}

func Test_ComposeSessionContext_WithSummary(t *testing.T) {
	basePrompt := "You are a friendly museum guide."
	summary := SUMMARY_BLOCK_BEGIN + "\nVisitor asked about impressionism.\n" + SUMMARY_BLOCK_END

	composed := ComposeSessionContext(basePrompt, summary)

	assert.True(t, strings.HasPrefix(composed, basePrompt))
	assert.True(t, strings.HasSuffix(composed, summary))
	assert.Contains(t, composed, summary)
}

// The continue path with no completion credential: base prompt first, then a
// template summary block that carries the dominant topic.
func Test_ComposeSessionContext_ContinueScenario(t *testing.T) {
	basePrompt := "You are a friendly music tutor."
	log := []types.Message{
		{Role: types.MESSAGE_ROLE_USER, Content: "I like jazz", Timestamp: 1700000000000},
		{Role: types.MESSAGE_ROLE_ASSISTANT, Content: "Great, noted.", Timestamp: 1700000010000},
	}

	composed := ComposeSessionContext(basePrompt, FallbackSummary(log))

	assert.True(t, strings.HasPrefix(composed, basePrompt))
	assert.True(t, strings.HasSuffix(composed, SUMMARY_BLOCK_END))
	assert.Contains(t, composed, "jazz")
}
