package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/avatarops-ai/avatarops/pkg/register"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ConversationStore = NewConversationStore(provider)
	})
}

type ConversationStore struct {
	CommonFields
}

func NewConversationStore(provider SqlProviderAchieve) *ConversationStore {
	repo := &ConversationStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONVERSATION)
	repo.SetAllColumns("id", "user_id", "knowledge_base_id", "avatar_id", "voice_id", "language",
		"title", "status", "session_context", "conversation_summary", "created_at", "last_message_at")
	return repo
}

func (s *ConversationStore) Create(ctx context.Context, data types.Conversation) error {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.LastMessageAt == 0 {
		data.LastMessageAt = now
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "knowledge_base_id", "avatar_id", "voice_id", "language",
			"title", "status", "session_context", "conversation_summary", "created_at", "last_message_at").
		Values(data.ID, data.UserID, data.KnowledgeBaseID, data.AvatarID, data.VoiceID, data.Language,
			data.Title, data.Status, data.SessionContext, data.ConversationSummary, data.CreatedAt, data.LastMessageAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ConversationStore) Get(ctx context.Context, id string) (*types.Conversation, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Conversation
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ConversationStore) applyListOptions(query sq.SelectBuilder, opts types.ListConversationOptions) sq.SelectBuilder {
	if opts.UserID != "" {
		query = query.Where(sq.Eq{"user_id": opts.UserID})
	}
	if opts.KnowledgeBaseID != "" {
		query = query.Where(sq.Eq{"knowledge_base_id": opts.KnowledgeBaseID})
	}
	if opts.Status != nil {
		query = query.Where(sq.Eq{"status": *opts.Status})
	}
	if opts.LastMessageBefore > 0 {
		query = query.Where(sq.Lt{"last_message_at": opts.LastMessageBefore})
	}
	return query
}

func (s *ConversationStore) List(ctx context.Context, opts types.ListConversationOptions, page, pageSize uint64) ([]types.Conversation, error) {
	query := s.applyListOptions(sq.Select(s.GetAllColumns()...).From(s.GetTable()), opts).
		OrderBy("last_message_at DESC")
	if page > 0 && pageSize > 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Conversation
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ConversationStore) Total(ctx context.Context, opts types.ListConversationOptions) (int64, error) {
	query := s.applyListOptions(sq.Select("COUNT(*)").From(s.GetTable()), opts)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *ConversationStore) UpdateSessionContext(ctx context.Context, id, sessionContext string, status types.ConversationStatus) error {
	query := sq.Update(s.GetTable()).
		Set("session_context", sessionContext).
		Set("status", status).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ConversationStore) UpdateSummary(ctx context.Context, id, summary string, status types.ConversationStatus, lastMessageAt int64) error {
	query := sq.Update(s.GetTable()).
		Set("conversation_summary", summary).
		Set("status", status).
		Set("last_message_at", lastMessageAt).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ConversationStore) UpdateLastMessageAt(ctx context.Context, id string, lastMessageAt int64) error {
	query := sq.Update(s.GetTable()).
		Set("last_message_at", lastMessageAt).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
