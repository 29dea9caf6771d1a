package types

// TranscriptChannel identifies one of the two independent live transcript
// sources in a streaming session.
type TranscriptChannel string

const (
	CHANNEL_USER   TranscriptChannel = "user"
	CHANNEL_AVATAR TranscriptChannel = "avatar"
)

func (c TranscriptChannel) Role() MessageRole {
	if c == CHANNEL_AVATAR {
		return MESSAGE_ROLE_ASSISTANT
	}
	return MESSAGE_ROLE_USER
}

func (c TranscriptChannel) Valid() bool {
	return c == CHANNEL_USER || c == CHANNEL_AVATAR
}

// PartialFragment is a transient, non-persisted increment of an in-progress
// utterance delivered by the streaming service.
type PartialFragment struct {
	Channel TranscriptChannel `json:"channel"`
	Text    string            `json:"text"`
}

// SessionState lives only in memory for the duration of a live session.
type SessionState int32

const (
	SESSION_STATE_INACTIVE SessionState = iota
	SESSION_STATE_CONNECTING
	SESSION_STATE_CONNECTED
)

func (s SessionState) String() string {
	switch s {
	case SESSION_STATE_CONNECTING:
		return "CONNECTING"
	case SESSION_STATE_CONNECTED:
		return "CONNECTED"
	default:
		return "INACTIVE"
	}
}

// StartOptions is the session start payload for the streaming service.
// Instruction and KnowledgeBaseRef are mutually exclusive: the service accepts
// a literal instruction payload or a provider-side knowledge base reference,
// never both.
type StartOptions struct {
	AvatarID         string `json:"avatar_id"`
	Language         string `json:"language"`
	VoiceID          string `json:"voice_id"`
	Instruction      string `json:"instruction,omitempty"`
	KnowledgeBaseRef string `json:"knowledge_base_ref,omitempty"`
}
