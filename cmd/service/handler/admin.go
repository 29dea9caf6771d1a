package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type ListUsersRequest struct {
	Page     uint64 `json:"page" form:"page" binding:"required"`
	Pagesize uint64 `json:"pagesize" form:"pagesize" binding:"required,max=100"`
}

func (s *HttpSrv) AdminListUsers(c *gin.Context) {
	var req ListUsersRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewAdminLogic(c, s.Core).ListUsers(req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, list)
}

type AdminListConversationsRequest struct {
	Page     uint64 `json:"page" form:"page" binding:"required"`
	Pagesize uint64 `json:"pagesize" form:"pagesize" binding:"required,max=100"`
	UserID   string `json:"user_id" form:"user_id"`
}

func (s *HttpSrv) AdminListConversations(c *gin.Context) {
	var req AdminListConversationsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewAdminLogic(c, s.Core).ListConversations(req.UserID, req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, list)
}

func (s *HttpSrv) AdminResetUserPassword(c *gin.Context) {
	userID := c.Param("id")

	password, err := v1.NewAdminLogic(c, s.Core).ResetUserPassword(userID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, gin.H{
		"password": password,
	})
}

type UpdateUserRoleRequest struct {
	Role types.UserRole `json:"role" binding:"required"`
}

func (s *HttpSrv) AdminUpdateUserRole(c *gin.Context) {
	userID := c.Param("id")
	var req UpdateUserRoleRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewAdminLogic(c, s.Core).UpdateUserRole(userID, req.Role); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) AdminStats(c *gin.Context) {
	stats, err := v1.NewAdminLogic(c, s.Core).Stats()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, stats)
}
