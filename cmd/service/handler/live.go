package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveSessionSocket upgrades the operator console connection, starts the
// streaming session for the conversation and relays session notices (state
// changes, finalized messages) until the client disconnects. Client
// disconnect stops the session so trailing partials get flushed.
func (s *HttpSrv) LiveSessionSocket(c *gin.Context) {
	id, _ := c.Params.Get("id")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.String("error", err.Error()))
		response.APIError(c, errors.New("api.LiveSessionSocket.upgrade", "failed to upgrade http", err))
		return
	}
	defer ws.Close()

	notices := make(chan live.Notice, 64)
	logic := v1.NewLiveSessionLogic(c, s.Core)
	if _, err = logic.StartSession(id, func(n live.Notice) {
		select {
		case notices <- n:
		default:
			slog.Warn("dropping live notice, slow console consumer", slog.String("conversation", id))
		}
	}); err != nil {
		raw, _ := json.Marshal(map[string]string{"error": err.Error()})
		_ = ws.WriteMessage(websocket.TextMessage, raw)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// the console never sends payloads, reads only detect disconnect
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-notices:
			raw, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if err = ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				s.stopLiveSession(c, id)
				return
			}
		case <-done:
			s.stopLiveSession(c, id)
			return
		}
	}
}

func (s *HttpSrv) stopLiveSession(c *gin.Context, id string) {
	if err := v1.NewLiveSessionLogic(c, s.Core).StopSession(id); err != nil {
		slog.Error("failed to stop live session", slog.String("conversation", id), slog.String("error", err.Error()))
	}
}

func (s *HttpSrv) StopLiveSession(c *gin.Context) {
	id, _ := c.Params.Get("id")
	if err := v1.NewLiveSessionLogic(c, s.Core).StopSession(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type LiveSessionStateResponse struct {
	State string `json:"state"`
}

func (s *HttpSrv) GetLiveSessionState(c *gin.Context) {
	id, _ := c.Params.Get("id")
	state, err := v1.NewLiveSessionLogic(c, s.Core).SessionState(id)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, LiveSessionStateResponse{State: state.String()})
}
