package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/avatarops-ai/avatarops/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
