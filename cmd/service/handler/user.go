package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type GetUserResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Appid  string `json:"appid"`
}

func (s *HttpSrv) GetUser(c *gin.Context) {
	user, err := v1.NewUserLogic(c, s.Core).GetProfile()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, GetUserResponse{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		Appid:  user.Appid,
	})
}

type UpdateUserProfileRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=32"`
}

func (s *HttpSrv) UpdateUserProfile(c *gin.Context) {
	var req UpdateUserProfileRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewUserLogic(c, s.Core).UpdateProfile(req.Name); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

type UpdateUserPasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8,max=64"`
}

func (s *HttpSrv) UpdateUserPassword(c *gin.Context) {
	var req UpdateUserPasswordRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewUserLogic(c, s.Core).UpdatePassword(req.OldPassword, req.NewPassword); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
