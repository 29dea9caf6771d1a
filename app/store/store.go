package store

import (
	"context"

	"github.com/avatarops-ai/avatarops/pkg/sqlstore"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

type UserStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, appid, id string) (*types.User, error)
	GetByEmail(ctx context.Context, appid, email string) (*types.User, error)
	UpdateProfile(ctx context.Context, id, name string) error
	UpdatePassword(ctx context.Context, id, password, salt string) error
	UpdateRole(ctx context.Context, id string, role types.UserRole) error
	List(ctx context.Context, appid string, page, pageSize uint64) ([]types.User, error)
	Total(ctx context.Context, appid string) (int64, error)
}

type KnowledgeBaseStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.KnowledgeBase) error
	Get(ctx context.Context, id string) (*types.KnowledgeBase, error)
	Update(ctx context.Context, id string, args types.UpdateKnowledgeBaseArgs) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string, page, pageSize uint64) ([]types.KnowledgeBase, error)
	Total(ctx context.Context, userID string) (int64, error)
}

type ConversationStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Conversation) error
	Get(ctx context.Context, id string) (*types.Conversation, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts types.ListConversationOptions, page, pageSize uint64) ([]types.Conversation, error)
	Total(ctx context.Context, opts types.ListConversationOptions) (int64, error)
	// UpdateSessionContext is the continue-path write: derived context plus
	// status in one statement.
	UpdateSessionContext(ctx context.Context, id, sessionContext string, status types.ConversationStatus) error
	// UpdateSummary is the end-path write.
	UpdateSummary(ctx context.Context, id, summary string, status types.ConversationStatus, lastMessageAt int64) error
	UpdateLastMessageAt(ctx context.Context, id string, lastMessageAt int64) error
}

type MessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Message) error
	ListByConversation(ctx context.Context, conversationID string, page, pageSize uint64) ([]types.Message, error)
	TotalByConversation(ctx context.Context, conversationID string) (int64, error)
	Total(ctx context.Context) (int64, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}
