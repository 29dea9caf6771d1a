package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type CreateKnowledgeBaseRequest struct {
	Name           string `json:"name" form:"name" binding:"required,max=64"`
	WelcomeMessage string `json:"welcome_message" form:"welcome_message"`
	BasePrompt     string `json:"base_prompt" form:"base_prompt" binding:"required"`
}

func (s *HttpSrv) CreateKnowledgeBase(c *gin.Context) {
	var req CreateKnowledgeBaseRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kb, err := v1.NewKnowledgeBaseLogic(c, s.Core).Create(req.Name, req.WelcomeMessage, req.BasePrompt)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, kb)
}

func (s *HttpSrv) GetKnowledgeBase(c *gin.Context) {
	id, _ := c.Params.Get("id")
	kb, err := v1.NewKnowledgeBaseLogic(c, s.Core).Get(id)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, kb)
}

type UpdateKnowledgeBaseRequest struct {
	Name           string `json:"name" form:"name" binding:"required,max=64"`
	WelcomeMessage string `json:"welcome_message" form:"welcome_message"`
	BasePrompt     string `json:"base_prompt" form:"base_prompt" binding:"required"`
}

func (s *HttpSrv) UpdateKnowledgeBase(c *gin.Context) {
	var req UpdateKnowledgeBaseRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, _ := c.Params.Get("id")
	err := v1.NewKnowledgeBaseLogic(c, s.Core).Update(id, types.UpdateKnowledgeBaseArgs{
		Name:           req.Name,
		WelcomeMessage: req.WelcomeMessage,
		BasePrompt:     req.BasePrompt,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) DeleteKnowledgeBase(c *gin.Context) {
	id, _ := c.Params.Get("id")
	if err := v1.NewKnowledgeBaseLogic(c, s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type ListKnowledgeBasesRequest struct {
	Page     uint64 `json:"page" form:"page" binding:"required"`
	Pagesize uint64 `json:"pagesize" form:"pagesize" binding:"required,max=50"`
}

func (s *HttpSrv) ListKnowledgeBases(c *gin.Context) {
	var req ListKnowledgeBasesRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewKnowledgeBaseLogic(c, s.Core).List(req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, list)
}
