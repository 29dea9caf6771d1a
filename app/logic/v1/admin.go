package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type AdminLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewAdminLogic(ctx context.Context, core *core.Core) *AdminLogic {
	return &AdminLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type UserList struct {
	List  []types.User `json:"list"`
	Total int64        `json:"total"`
}

func (l *AdminLogic) ListUsers(page, pageSize uint64) (*UserList, error) {
	if err := l.RequireAdmin(); err != nil {
		return nil, err
	}

	appid := l.GetUserInfo().Appid
	list, err := l.core.Store().UserStore().List(l.ctx, appid, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AdminLogic.ListUsers.UserStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().UserStore().Total(l.ctx, appid)
	if err != nil {
		return nil, errors.New("AdminLogic.ListUsers.UserStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return &UserList{List: list, Total: total}, nil
}

type AdminConversationEntry struct {
	types.Conversation
	Messages int64 `json:"messages"`
}

type AdminConversationList struct {
	List  []AdminConversationEntry `json:"list"`
	Total int64                    `json:"total"`
}

// ListConversations is the cross-user oversight view: every conversation in
// the system, optionally filtered to one user, each with its message count.
func (l *AdminLogic) ListConversations(userID string, page, pageSize uint64) (*AdminConversationList, error) {
	if err := l.RequireAdmin(); err != nil {
		return nil, err
	}

	opts := types.ListConversationOptions{UserID: userID}
	list, err := l.core.Store().ConversationStore().List(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AdminLogic.ListConversations.ConversationStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ConversationStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("AdminLogic.ListConversations.ConversationStore.Total", i18n.ERROR_INTERNAL, err)
	}

	entries := make([]AdminConversationEntry, 0, len(list))
	for _, conversation := range list {
		messages, err := l.core.Store().MessageStore().TotalByConversation(l.ctx, conversation.ID)
		if err != nil {
			return nil, errors.New("AdminLogic.ListConversations.MessageStore.TotalByConversation", i18n.ERROR_INTERNAL, err)
		}
		entries = append(entries, AdminConversationEntry{Conversation: conversation, Messages: messages})
	}
	return &AdminConversationList{List: entries, Total: total}, nil
}

// ResetUserPassword issues a random password for a locked-out operator. The
// new password is returned once and never stored in the clear.
func (l *AdminLogic) ResetUserPassword(userID string) (string, error) {
	if err := l.RequireAdmin(); err != nil {
		return "", err
	}

	user, err := l.core.Store().UserStore().GetUser(l.ctx, l.GetUserInfo().Appid, userID)
	if err != nil && err != sql.ErrNoRows {
		return "", errors.New("AdminLogic.ResetUserPassword.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	if user == nil {
		return "", errors.New("AdminLogic.ResetUserPassword.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	password := utils.RandomStr(16)
	salt := utils.RandomStr(10)
	if err = l.core.Store().UserStore().UpdatePassword(l.ctx, userID, utils.GenUserPassword(salt, password), salt); err != nil {
		return "", errors.New("AdminLogic.ResetUserPassword.UserStore.UpdatePassword", i18n.ERROR_INTERNAL, err)
	}
	return password, nil
}

func (l *AdminLogic) UpdateUserRole(userID string, role types.UserRole) error {
	if err := l.RequireAdmin(); err != nil {
		return err
	}
	if role != types.USER_ROLE_MEMBER && role != types.USER_ROLE_ADMIN {
		return errors.New("AdminLogic.UpdateUserRole.role", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if userID == l.GetUserInfo().User {
		return errors.New("AdminLogic.UpdateUserRole.self", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	if err := l.core.Store().UserStore().UpdateRole(l.ctx, userID, role); err != nil {
		return errors.New("AdminLogic.UpdateUserRole.UserStore.UpdateRole", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

type ConsoleStats struct {
	Users               int64 `json:"users"`
	KnowledgeBases      int64 `json:"knowledge_bases"`
	Conversations       int64 `json:"conversations"`
	ActiveConversations int64 `json:"active_conversations"`
	Messages            int64 `json:"messages"`
	LiveSessions        int   `json:"live_sessions"`
	GeneratedAt         int64 `json:"generated_at"`
}

const statsCacheKey = "admin:console:stats"

// Stats aggregates console counters. Results are cached for a minute; the
// live session count is always read fresh from the registry.
func (l *AdminLogic) Stats() (*ConsoleStats, error) {
	if err := l.RequireAdmin(); err != nil {
		return nil, err
	}

	if raw, err := l.core.Cache().Get(l.ctx, statsCacheKey); err == nil && raw != "" {
		var cached ConsoleStats
		if err = json.Unmarshal([]byte(raw), &cached); err == nil {
			cached.LiveSessions = l.core.Srv().Streaming().Registry().Count()
			return &cached, nil
		}
	}

	appid := l.GetUserInfo().Appid
	users, err := l.core.Store().UserStore().Total(l.ctx, appid)
	if err != nil {
		return nil, errors.New("AdminLogic.Stats.UserStore.Total", i18n.ERROR_INTERNAL, err)
	}

	conversations, err := l.core.Store().ConversationStore().Total(l.ctx, types.ListConversationOptions{})
	if err != nil {
		return nil, errors.New("AdminLogic.Stats.ConversationStore.Total", i18n.ERROR_INTERNAL, err)
	}

	active := types.CONVERSATION_STATUS_ACTIVE
	activeTotal, err := l.core.Store().ConversationStore().Total(l.ctx, types.ListConversationOptions{Status: &active})
	if err != nil {
		return nil, errors.New("AdminLogic.Stats.ConversationStore.Total.active", i18n.ERROR_INTERNAL, err)
	}

	knowledgeBases, err := l.core.Store().KnowledgeBaseStore().Total(l.ctx, "")
	if err != nil {
		return nil, errors.New("AdminLogic.Stats.KnowledgeBaseStore.Total", i18n.ERROR_INTERNAL, err)
	}

	messages, err := l.core.Store().MessageStore().Total(l.ctx)
	if err != nil {
		return nil, errors.New("AdminLogic.Stats.MessageStore.Total", i18n.ERROR_INTERNAL, err)
	}

	stats := &ConsoleStats{
		Users:               users,
		KnowledgeBases:      knowledgeBases,
		Conversations:       conversations,
		ActiveConversations: activeTotal,
		Messages:            messages,
		LiveSessions:        l.core.Srv().Streaming().Registry().Count(),
		GeneratedAt:         time.Now().Unix(),
	}

	if raw, err := json.Marshal(stats); err == nil {
		_ = l.core.Cache().SetEx(l.ctx, statsCacheKey, string(raw), time.Minute)
	}
	return stats, nil
}
