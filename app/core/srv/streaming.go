package srv

import (
	"github.com/avatarops-ai/avatarops/pkg/live"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

// StreamingSrv owns the avatar streaming provider client and the registry of
// live sessions, one per conversation.
type StreamingSrv struct {
	provider   live.Provider
	registry   *live.Registry
	sessionCfg live.SessionConfig
}

func ApplyStreaming(cfg live.ProviderConfig, tokenCache types.Cache, sessionCfg live.SessionConfig) ApplyFunc {
	return func(s *Srv) {
		s.streaming = &StreamingSrv{
			provider:   live.NewClient(cfg, tokenCache),
			registry:   live.NewRegistry(),
			sessionCfg: sessionCfg,
		}
	}
}

func (s *StreamingSrv) Provider() live.Provider {
	return s.provider
}

func (s *StreamingSrv) Registry() *live.Registry {
	return s.registry
}

func (s *StreamingSrv) SessionConfig() live.SessionConfig {
	return s.sessionCfg
}
