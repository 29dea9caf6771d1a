package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

func (s *HttpSrv) CreateConversation(c *gin.Context) {
	var req v1.CreateConversationArgs
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	conversation, err := v1.NewConversationLogic(c, s.Core).Create(req)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, conversation)
}

func (s *HttpSrv) GetConversation(c *gin.Context) {
	id, _ := c.Params.Get("id")
	conversation, err := v1.NewConversationLogic(c, s.Core).Get(id)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, conversation)
}

type ListConversationsRequest struct {
	Page            uint64 `json:"page" form:"page" binding:"required"`
	Pagesize        uint64 `json:"pagesize" form:"pagesize" binding:"required,max=50"`
	KnowledgeBaseID string `json:"knowledge_base_id" form:"knowledge_base_id"`
	Status          string `json:"status" form:"status" binding:"omitempty,oneof=active completed"`
}

func (s *HttpSrv) ListConversations(c *gin.Context) {
	var req ListConversationsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	var status *types.ConversationStatus
	if req.Status != "" {
		v := types.ConversationStatus(req.Status)
		status = &v
	}

	list, err := v1.NewConversationLogic(c, s.Core).List(req.KnowledgeBaseID, status, req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, list)
}

func (s *HttpSrv) DeleteConversation(c *gin.Context) {
	id, _ := c.Params.Get("id")
	if err := v1.NewConversationLogic(c, s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type ListMessagesRequest struct {
	Page     uint64 `json:"page" form:"page" binding:"required"`
	Pagesize uint64 `json:"pagesize" form:"pagesize" binding:"required,max=100"`
}

func (s *HttpSrv) ListConversationMessages(c *gin.Context) {
	var req ListMessagesRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, _ := c.Params.Get("id")
	list, err := v1.NewConversationLogic(c, s.Core).ListMessages(id, req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, list)
}

type AppendMessageRequest struct {
	Role    string `json:"role" form:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" form:"content" binding:"required"`
}

func (s *HttpSrv) AppendConversationMessage(c *gin.Context) {
	var req AppendMessageRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, _ := c.Params.Get("id")
	msg, err := v1.NewConversationLogic(c, s.Core).AppendMessage(id, types.MessageRole(req.Role), req.Content)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, msg)
}

func (s *HttpSrv) ContinueConversation(c *gin.Context) {
	id, _ := c.Params.Get("id")
	result, err := v1.NewConversationLogic(c, s.Core).Continue(id)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

func (s *HttpSrv) EndConversation(c *gin.Context) {
	id, _ := c.Params.Get("id")
	if err := v1.NewConversationLogic(c, s.Core).End(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
