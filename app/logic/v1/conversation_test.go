package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

func Test_DefaultConversationLanguage(t *testing.T) {
	kb := &types.KnowledgeBase{
		WelcomeMessage: "Bonjour et bienvenue dans notre musée, je suis ravi de vous accueillir aujourd'hui et de répondre à toutes vos questions sur nos collections.",
		BasePrompt:     "You are a concise museum guide who answers every visitor question in short and friendly sentences.",
	}
	// the welcome message wins over the base prompt
	assert.Equal(t, "fr", defaultConversationLanguage(kb))

	kb.WelcomeMessage = ""
	assert.Equal(t, "en", defaultConversationLanguage(kb))

	// inconclusive input defaults to english
	assert.Equal(t, "en", defaultConversationLanguage(&types.KnowledgeBase{}))
}
