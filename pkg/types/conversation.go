package types

type Conversation struct {
	ID              string             `json:"id" db:"id"`
	UserID          string             `json:"user_id" db:"user_id"`
	KnowledgeBaseID string             `json:"knowledge_base_id" db:"knowledge_base_id"`
	AvatarID        string             `json:"avatar_id" db:"avatar_id"`
	VoiceID         string             `json:"voice_id" db:"voice_id"`
	Language        string             `json:"language" db:"language"`
	Title           string             `json:"title" db:"title"`
	Status          ConversationStatus `json:"status" db:"status"`
	// SessionContext is derived state, recomputed on every continue. It is the
	// instruction payload handed to the streaming service at session start and
	// must never be empty while the conversation is active.
	SessionContext string `json:"session_context" db:"session_context"`
	// ConversationSummary is written at end time only. Archival, not re-fed
	// into SessionContext on its own.
	ConversationSummary string `json:"conversation_summary" db:"conversation_summary"`
	CreatedAt           int64  `json:"created_at" db:"created_at"`
	LastMessageAt       int64  `json:"last_message_at" db:"last_message_at"`
}

type ConversationStatus string

const (
	CONVERSATION_STATUS_ACTIVE    ConversationStatus = "active"
	CONVERSATION_STATUS_COMPLETED ConversationStatus = "completed"
)

type ListConversationOptions struct {
	UserID          string
	KnowledgeBaseID string
	Status          *ConversationStatus
	// LastMessageBefore filters conversations whose latest activity is older
	// than the given unix timestamp. Used by the stale sweeper.
	LastMessageBefore int64
}
