package service

import (
	"github.com/gin-gonic/gin"

	"github.com/avatarops-ai/avatarops/app/core"
	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/cmd/service/handler"
	"github.com/avatarops-ai/avatarops/cmd/service/middleware"
	"github.com/avatarops-ai/avatarops/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.SetAppid(s.Core), middleware.AcceptLanguage())
	s.Engine.Use(func(c *gin.Context) {
		timer := s.Core.Metrics().ApiResponseTimer(c.FullPath())
		defer timer.ObserveDuration()
		c.Next()
	})

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		login := apiV1.Group("/login")
		{
			login.POST("/register", ipLimit("register", core.WithLimit(10)), s.Register)
			login.POST("/token", ipLimit("login", core.WithLimit(20)), s.Login)
		}

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		user := authed.Group("/user")
		{
			user.GET("/info", s.GetUser)
			user.PUT("/profile", userLimit("profile"), s.UpdateUserProfile)
			user.PUT("/password", userLimit("password", core.WithLimit(10)), s.UpdateUserPassword)
		}

		kb := authed.Group("/knowledge-base")
		{
			kb.POST("", userLimit("modify_kb"), s.CreateKnowledgeBase)
			kb.GET("/list", s.ListKnowledgeBases)
			kb.GET("/:id", s.GetKnowledgeBase)
			kb.PUT("/:id", userLimit("modify_kb"), s.UpdateKnowledgeBase)
			kb.DELETE("/:id", s.DeleteKnowledgeBase)
		}

		conversation := authed.Group("/conversation")
		{
			conversation.POST("", userLimit("modify_conversation"), s.CreateConversation)
			conversation.GET("/list", s.ListConversations)
			conversation.GET("/:id", s.GetConversation)
			conversation.DELETE("/:id", s.DeleteConversation)
			conversation.GET("/:id/messages", s.ListConversationMessages)
			conversation.POST("/:id/message", userLimit("append_message", core.WithLimit(120)), s.AppendConversationMessage)
			conversation.POST("/:id/continue", userLimit("continue", core.WithLimit(20)), s.ContinueConversation)
			conversation.POST("/:id/end", userLimit("end", core.WithLimit(20)), s.EndConversation)
			conversation.POST("/:id/live/stop", s.StopLiveSession)
			conversation.GET("/:id/live/state", s.GetLiveSessionState)
		}

		// websocket upgrade carries the token in the query string
		apiV1.GET("/conversation/:id/live/ws", middleware.AuthorizationFromQuery(s.Core), s.LiveSessionSocket)

		admin := authed.Group("/admin")
		admin.Use(middleware.VerifyAdmin())
		{
			admin.GET("/users", s.AdminListUsers)
			admin.PUT("/users/:id/role", s.AdminUpdateUserRole)
			admin.POST("/users/:id/password/reset", s.AdminResetUserPassword)
			admin.GET("/conversations", s.AdminListConversations)
			admin.GET("/stats", s.AdminStats)
		}
	}
}
