package process

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

// StaleSweeper completes active conversations that have seen no messages for
// the configured window. It runs the same finalize path as a user-initiated
// end: stop any live session, summarize the log, archive the summary.
type StaleSweeper struct {
	core       *core.Core
	staleAfter time.Duration
	cron       *cron.Cron
}

func NewStaleSweeper(core *core.Core, staleAfter time.Duration) *StaleSweeper {
	return &StaleSweeper{
		core:       core,
		staleAfter: staleAfter,
		cron:       cron.New(),
	}
}

// Start schedules the sweeper. An empty spec disables it.
func (s *StaleSweeper) Start(spec string) error {
	if spec == "" {
		slog.Info("stale conversation sweeper disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Run(context.Background()); err != nil {
			slog.Error("stale conversation sweep failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *StaleSweeper) Stop() {
	s.cron.Stop()
}

func (s *StaleSweeper) Run(ctx context.Context) error {
	active := types.CONVERSATION_STATUS_ACTIVE
	batchSize := uint64(100)
	swept := 0

	for {
		stale, err := s.core.Store().ConversationStore().List(ctx, types.ListConversationOptions{
			Status:            &active,
			LastMessageBefore: time.Now().Add(-s.staleAfter).UnixMilli(),
		}, 1, batchSize)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if len(stale) == 0 {
			break
		}

		finalized := 0
		for _, conversation := range stale {
			if err := s.finalize(ctx, conversation); err != nil {
				slog.Error("failed to finalize stale conversation",
					slog.String("conversation", conversation.ID),
					slog.String("error", err.Error()))
				continue
			}
			finalized++
		}
		swept += finalized

		if !continueSweep(finalized, len(stale), batchSize) {
			break
		}
	}

	if swept > 0 {
		slog.Info("stale conversation sweep finished", slog.Int("swept", swept))
	}
	return nil
}

// continueSweep reports whether fetching the next page can make progress. A
// full batch that finalized nothing would be re-fetched verbatim, so those
// failures wait for the next scheduled run instead of spinning here.
func continueSweep(finalized, fetched int, batchSize uint64) bool {
	return finalized > 0 && uint64(fetched) >= batchSize
}

func (s *StaleSweeper) finalize(ctx context.Context, conversation types.Conversation) error {
	if session, ok := s.core.Srv().Streaming().Registry().Get(conversation.ID); ok {
		_ = session.Stop(ctx)
		s.core.Srv().Streaming().Registry().Release(conversation.ID)
	}

	messageLog, err := s.core.Store().MessageStore().ListByConversation(ctx, conversation.ID, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	summary := s.core.Srv().AI().Summarizer().Summarize(ctx, messageLog)
	return s.core.Store().ConversationStore().UpdateSummary(ctx, conversation.ID, summary, types.CONVERSATION_STATUS_COMPLETED, conversation.LastMessageAt)
}
