package types

// KnowledgeBase is the operator-authored instruction set an avatar session is
// driven by. The continuity pipeline reads it but must never write it.
type KnowledgeBase struct {
	ID             string `json:"id" db:"id"`
	UserID         string `json:"user_id" db:"user_id"`
	Name           string `json:"name" db:"name"`
	WelcomeMessage string `json:"welcome_message" db:"welcome_message"`
	BasePrompt     string `json:"base_prompt" db:"base_prompt"`
	UpdatedAt      int64  `json:"updated_at" db:"updated_at"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
}

type UpdateKnowledgeBaseArgs struct {
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	BasePrompt     string `json:"base_prompt"`
}
