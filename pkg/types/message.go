package types

type Message struct {
	ID             string      `json:"id" db:"id"`
	ConversationID string      `json:"conversation_id" db:"conversation_id"`
	Role           MessageRole `json:"role" db:"role"`
	Content        string      `json:"content" db:"content"`
	// Timestamp is a unix timestamp in milliseconds. Messages are immutable
	// once created and ordered by this field ascending.
	Timestamp int64 `json:"timestamp" db:"timestamp"`
}

type MessageRole string

const (
	MESSAGE_ROLE_USER      MessageRole = "user"
	MESSAGE_ROLE_ASSISTANT MessageRole = "assistant"
)
