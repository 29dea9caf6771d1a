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
		provider.stores.KnowledgeBaseStore = NewKnowledgeBaseStore(provider)
	})
}

type KnowledgeBaseStore struct {
	CommonFields
}

func NewKnowledgeBaseStore(provider SqlProviderAchieve) *KnowledgeBaseStore {
	repo := &KnowledgeBaseStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE)
	repo.SetAllColumns("id", "user_id", "name", "welcome_message", "base_prompt", "updated_at", "created_at")
	return repo
}

func (s *KnowledgeBaseStore) Create(ctx context.Context, data types.KnowledgeBase) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "name", "welcome_message", "base_prompt", "updated_at", "created_at").
		Values(data.ID, data.UserID, data.Name, data.WelcomeMessage, data.BasePrompt, data.UpdatedAt, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStore) Get(ctx context.Context, id string) (*types.KnowledgeBase, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBase
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *KnowledgeBaseStore) Update(ctx context.Context, id string, args types.UpdateKnowledgeBaseArgs) error {
	query := sq.Update(s.GetTable()).
		Set("name", args.Name).
		Set("welcome_message", args.WelcomeMessage).
		Set("base_prompt", args.BasePrompt).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, queryArgs, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, queryArgs...)
	return err
}

func (s *KnowledgeBaseStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStore) List(ctx context.Context, userID string, page, pageSize uint64) ([]types.KnowledgeBase, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if userID != "" {
		query = query.Where(sq.Eq{"user_id": userID})
	}
	if page > 0 && pageSize > 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBase
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseStore) Total(ctx context.Context, userID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	if userID != "" {
		query = query.Where(sq.Eq{"user_id": userID})
	}

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
