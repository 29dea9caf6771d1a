package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/ai"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

// ConversationLogic is the conversation orchestrator. It is the only
// component with write access to the conversation record's derived fields
// (session_context, conversation_summary, status).
type ConversationLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewConversationLogic(ctx context.Context, core *core.Core) *ConversationLogic {
	return &ConversationLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type CreateConversationArgs struct {
	KnowledgeBaseID string `json:"knowledge_base_id" binding:"required"`
	AvatarID        string `json:"avatar_id" binding:"required"`
	VoiceID         string `json:"voice_id"`
	Language        string `json:"language"`
	Title           string `json:"title"`
}

// defaultConversationLanguage detects the session language from the knowledge
// base. The welcome message is what the avatar speaks first, so it is the
// sample that matters; the base prompt only covers for an empty welcome.
func defaultConversationLanguage(kb *types.KnowledgeBase) string {
	sample := kb.WelcomeMessage
	if sample == "" {
		sample = kb.BasePrompt
	}
	return utils.WhatLangTag(sample)
}

// Create opens a conversation against one of the caller's knowledge bases.
// SessionContext starts as the base prompt so it is never empty while the
// conversation is active.
func (l *ConversationLogic) Create(args CreateConversationArgs) (*types.Conversation, error) {
	kb, err := NewKnowledgeBaseLogic(l.ctx, l.core).Get(args.KnowledgeBaseID)
	if err != nil {
		return nil, err
	}

	language := args.Language
	if language == "" {
		language = defaultConversationLanguage(kb)
	}

	title := args.Title
	if title == "" {
		title = kb.Name
	}

	conversation := types.Conversation{
		ID:              utils.GenRandomID(),
		UserID:          l.GetUserInfo().User,
		KnowledgeBaseID: kb.ID,
		AvatarID:        args.AvatarID,
		VoiceID:         args.VoiceID,
		Language:        language,
		Title:           title,
		Status:          types.CONVERSATION_STATUS_ACTIVE,
		SessionContext:  kb.BasePrompt,
		CreatedAt:       time.Now().Unix(),
		LastMessageAt:   time.Now().UnixMilli(),
	}
	if err = l.core.Store().ConversationStore().Create(l.ctx, conversation); err != nil {
		return nil, errors.New("ConversationLogic.Create.ConversationStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &conversation, nil
}

// Get verifies ownership before returning the record.
func (l *ConversationLogic) Get(id string) (*types.Conversation, error) {
	conversation, err := l.core.Store().ConversationStore().Get(l.ctx, id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ConversationLogic.Get.ConversationStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if conversation == nil || conversation.UserID != l.GetUserInfo().User {
		return nil, errors.New("ConversationLogic.Get.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return conversation, nil
}

type ConversationList struct {
	List  []types.Conversation `json:"list"`
	Total int64                `json:"total"`
}

func (l *ConversationLogic) List(knowledgeBaseID string, status *types.ConversationStatus, page, pageSize uint64) (*ConversationList, error) {
	opts := types.ListConversationOptions{
		UserID:          l.GetUserInfo().User,
		KnowledgeBaseID: knowledgeBaseID,
		Status:          status,
	}
	list, err := l.core.Store().ConversationStore().List(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ConversationLogic.List.ConversationStore.List", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().ConversationStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("ConversationLogic.List.ConversationStore.Total", i18n.ERROR_INTERNAL, err)
	}
	return &ConversationList{List: list, Total: total}, nil
}

// Delete removes the conversation and its message log in one transaction. A
// live session on the conversation is stopped first.
func (l *ConversationLogic) Delete(id string) error {
	if _, err := l.Get(id); err != nil {
		return err
	}

	if session, ok := l.core.Srv().Streaming().Registry().Get(id); ok {
		_ = session.Stop(l.ctx)
		l.core.Srv().Streaming().Registry().Release(id)
	}

	return l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().MessageStore().DeleteByConversation(ctx, id); err != nil {
			return errors.New("ConversationLogic.Delete.MessageStore.DeleteByConversation", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().ConversationStore().Delete(ctx, id); err != nil {
			return errors.New("ConversationLogic.Delete.ConversationStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
}

type MessageList struct {
	List  []types.Message `json:"list"`
	Total int64           `json:"total"`
}

// ListMessages is the replay endpoint: the persisted log ordered by timestamp
// ascending.
func (l *ConversationLogic) ListMessages(conversationID string, page, pageSize uint64) (*MessageList, error) {
	if _, err := l.Get(conversationID); err != nil {
		return nil, err
	}

	list, err := l.core.Store().MessageStore().ListByConversation(l.ctx, conversationID, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ConversationLogic.ListMessages.MessageStore.ListByConversation", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().MessageStore().TotalByConversation(l.ctx, conversationID)
	if err != nil {
		return nil, errors.New("ConversationLogic.ListMessages.MessageStore.TotalByConversation", i18n.ERROR_INTERNAL, err)
	}
	return &MessageList{List: list, Total: total}, nil
}

// AppendMessage appends one message to the caller's conversation log.
func (l *ConversationLogic) AppendMessage(conversationID string, role types.MessageRole, content string) (*types.Message, error) {
	if role != types.MESSAGE_ROLE_USER && role != types.MESSAGE_ROLE_ASSISTANT {
		return nil, errors.New("ConversationLogic.AppendMessage.role", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if _, err := l.Get(conversationID); err != nil {
		return nil, err
	}
	return NewMessageSink(l.core).AppendMessage(l.ctx, conversationID, role, content)
}

type ContinueResult struct {
	Conversation *types.Conversation `json:"conversation"`
	MessageLog   []types.Message     `json:"message_log"`
}

// Continue recomputes the session context from the full message log and
// reactivates the conversation. The knowledge base record is read, never
// written.
func (l *ConversationLogic) Continue(id string) (*ContinueResult, error) {
	conversation, err := l.Get(id)
	if err != nil {
		return nil, err
	}

	kb, err := l.core.Store().KnowledgeBaseStore().Get(l.ctx, conversation.KnowledgeBaseID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ConversationLogic.Continue.KnowledgeBaseStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if kb == nil {
		return nil, errors.New("ConversationLogic.Continue.kb.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	messageLog, err := l.fullMessageLog(id)
	if err != nil {
		return nil, err
	}

	summary := l.summarize(messageLog, "continue")
	sessionContext := ai.ComposeSessionContext(kb.BasePrompt, summary)

	if err = l.core.Store().ConversationStore().UpdateSessionContext(l.ctx, id, sessionContext, types.CONVERSATION_STATUS_ACTIVE); err != nil {
		return nil, errors.New("ConversationLogic.Continue.ConversationStore.UpdateSessionContext", i18n.ERROR_INTERNAL, err)
	}

	conversation.SessionContext = sessionContext
	conversation.Status = types.CONVERSATION_STATUS_ACTIVE
	return &ContinueResult{
		Conversation: conversation,
		MessageLog:   messageLog,
	}, nil
}

// End finalizes the conversation: a live session is stopped so trailing
// partials reach the log, then the archival summary is computed and stored.
// Repeated calls recompute and overwrite. SessionContext is not touched.
func (l *ConversationLogic) End(id string) error {
	if _, err := l.Get(id); err != nil {
		return err
	}

	if session, ok := l.core.Srv().Streaming().Registry().Get(id); ok {
		_ = session.Stop(l.ctx)
		l.core.Srv().Streaming().Registry().Release(id)
	}

	messageLog, err := l.fullMessageLog(id)
	if err != nil {
		return err
	}

	summary := l.summarize(messageLog, "end")
	if err = l.core.Store().ConversationStore().UpdateSummary(l.ctx, id, summary, types.CONVERSATION_STATUS_COMPLETED, time.Now().UnixMilli()); err != nil {
		return errors.New("ConversationLogic.End.ConversationStore.UpdateSummary", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ConversationLogic) fullMessageLog(conversationID string) ([]types.Message, error) {
	messages, err := l.core.Store().MessageStore().ListByConversation(l.ctx, conversationID, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ConversationLogic.fullMessageLog.MessageStore.ListByConversation", i18n.ERROR_INTERNAL, err)
	}
	return messages, nil
}

func (l *ConversationLogic) summarize(messageLog []types.Message, operation string) string {
	timer := l.core.Metrics().SummarizeTimer(operation)
	defer timer.ObserveDuration()
	return l.core.Srv().AI().Summarizer().Summarize(l.ctx, messageLog)
}

// MessageSink is the single writer for the append-only message log. The live
// session reactor calls it without a user context, so it performs no
// ownership check of its own.
type MessageSink struct {
	core *core.Core
}

func NewMessageSink(core *core.Core) *MessageSink {
	return &MessageSink{core: core}
}

func (s *MessageSink) AppendMessage(ctx context.Context, conversationID string, role types.MessageRole, content string) (*types.Message, error) {
	msg := types.Message{
		ID:             utils.GenUniqIDStr(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now().UnixMilli(),
	}

	err := s.core.Store().Transaction(ctx, func(ctx context.Context) error {
		if err := s.core.Store().MessageStore().Create(ctx, msg); err != nil {
			return err
		}
		return s.core.Store().ConversationStore().UpdateLastMessageAt(ctx, conversationID, msg.Timestamp)
	})
	if err != nil {
		return nil, errors.New("MessageSink.AppendMessage", i18n.ERROR_INTERNAL, err)
	}
	return &msg, nil
}
