package v1

import (
	"context"
	"net/http"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/live"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

// LiveSessionLogic glues the conversation record to the streaming session
// registry: one live session per conversation, started from the stored
// session context.
type LiveSessionLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewLiveSessionLogic(ctx context.Context, core *core.Core) *LiveSessionLogic {
	return &LiveSessionLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// StartSession opens the streaming session for an active conversation. The
// instruction payload is the stored session context; only when that is empty
// does the provider-side knowledge base reference go instead, never both.
func (l *LiveSessionLogic) StartSession(conversationID string, notify func(live.Notice)) (*live.Session, error) {
	conversation, err := NewConversationLogic(l.ctx, l.core).Get(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.Status != types.CONVERSATION_STATUS_ACTIVE {
		return nil, errors.New("LiveSessionLogic.StartSession.status", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	opts := types.StartOptions{
		AvatarID: conversation.AvatarID,
		Language: conversation.Language,
		VoiceID:  conversation.VoiceID,
	}
	if conversation.SessionContext != "" {
		opts.Instruction = conversation.SessionContext
	} else {
		opts.KnowledgeBaseRef = conversation.KnowledgeBaseID
	}

	streaming := l.core.Srv().Streaming()
	session := streaming.Registry().Acquire(conversationID, func() *live.Session {
		return live.NewSession(
			conversationID,
			streaming.Provider(),
			NewMessageSink(l.core),
			l.core.Metrics(),
			notify,
			streaming.SessionConfig(),
		)
	})

	if err = session.Start(l.ctx, opts); err != nil {
		return nil, errors.Trace("LiveSessionLogic.StartSession", err)
	}
	return session, nil
}

// StopSession flushes and tears down the live session. Unknown or already
// inactive sessions are a no-op so duplicate teardown calls stay harmless.
func (l *LiveSessionLogic) StopSession(conversationID string) error {
	if _, err := NewConversationLogic(l.ctx, l.core).Get(conversationID); err != nil {
		return err
	}

	session, ok := l.core.Srv().Streaming().Registry().Get(conversationID)
	if !ok {
		return nil
	}
	if err := session.Stop(l.ctx); err != nil {
		return errors.Trace("LiveSessionLogic.StopSession", err)
	}
	l.core.Srv().Streaming().Registry().Release(conversationID)
	return nil
}

func (l *LiveSessionLogic) SessionState(conversationID string) (types.SessionState, error) {
	if _, err := NewConversationLogic(l.ctx, l.core).Get(conversationID); err != nil {
		return types.SESSION_STATE_INACTIVE, err
	}
	session, ok := l.core.Srv().Streaming().Registry().Get(conversationID)
	if !ok {
		return types.SESSION_STATE_INACTIVE, nil
	}
	return session.State(), nil
}
