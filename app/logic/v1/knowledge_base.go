package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type KnowledgeBaseLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewKnowledgeBaseLogic(ctx context.Context, core *core.Core) *KnowledgeBaseLogic {
	return &KnowledgeBaseLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *KnowledgeBaseLogic) Create(name, welcomeMessage, basePrompt string) (*types.KnowledgeBase, error) {
	if name == "" || basePrompt == "" {
		return nil, errors.New("KnowledgeBaseLogic.Create.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	kb := types.KnowledgeBase{
		ID:             utils.GenRandomID(),
		UserID:         l.GetUserInfo().User,
		Name:           name,
		WelcomeMessage: welcomeMessage,
		BasePrompt:     basePrompt,
		CreatedAt:      time.Now().Unix(),
		UpdatedAt:      time.Now().Unix(),
	}
	if err := l.core.Store().KnowledgeBaseStore().Create(l.ctx, kb); err != nil {
		return nil, errors.New("KnowledgeBaseLogic.Create.KnowledgeBaseStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &kb, nil
}

// Get verifies ownership before returning the record.
func (l *KnowledgeBaseLogic) Get(id string) (*types.KnowledgeBase, error) {
	kb, err := l.core.Store().KnowledgeBaseStore().Get(l.ctx, id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.Get.KnowledgeBaseStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if kb == nil || kb.UserID != l.GetUserInfo().User {
		return nil, errors.New("KnowledgeBaseLogic.Get.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return kb, nil
}

func (l *KnowledgeBaseLogic) Update(id string, args types.UpdateKnowledgeBaseArgs) error {
	if _, err := l.Get(id); err != nil {
		return err
	}
	if err := l.core.Store().KnowledgeBaseStore().Update(l.ctx, id, args); err != nil {
		return errors.New("KnowledgeBaseLogic.Update.KnowledgeBaseStore.Update", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *KnowledgeBaseLogic) Delete(id string) error {
	if _, err := l.Get(id); err != nil {
		return err
	}
	if err := l.core.Store().KnowledgeBaseStore().Delete(l.ctx, id); err != nil {
		return errors.New("KnowledgeBaseLogic.Delete.KnowledgeBaseStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

type KnowledgeBaseList struct {
	List  []types.KnowledgeBase `json:"list"`
	Total int64                 `json:"total"`
}

func (l *KnowledgeBaseLogic) List(page, pageSize uint64) (*KnowledgeBaseList, error) {
	userID := l.GetUserInfo().User
	list, err := l.core.Store().KnowledgeBaseStore().List(l.ctx, userID, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.List.KnowledgeBaseStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().KnowledgeBaseStore().Total(l.ctx, userID)
	if err != nil {
		return nil, errors.New("KnowledgeBaseLogic.List.KnowledgeBaseStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return &KnowledgeBaseList{List: list, Total: total}, nil
}
