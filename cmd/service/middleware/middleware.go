package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avatarops-ai/avatarops/app/core"
	v1 "github.com/avatarops-ai/avatarops/app/logic/v1"
	"github.com/avatarops-ai/avatarops/app/response"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/security"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if !i18n.ALLOW_LANG[lang] {
			lang = i18n.DEFAULT_LANG
		}
		ctx.Set(v1.LANGUAGE_KEY, lang)
	}
}

const AUTH_TOKEN_HEADER_KEY = "X-Authorization"

func SetAppid(core *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(v1.APPID_KEY, core.Cfg().DefaultAppid())
	}
}

// Authorization verifies the signed auth token from the request header and
// injects its claims for the logic layer.
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue := c.GetHeader(AUTH_TOKEN_HEADER_KEY)
		if tokenValue == "" {
			// fall back to a standard bearer header
			tokenValue = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if ok, err := parseAuthToken(c, core, tokenValue); err != nil {
			response.APIError(c, errors.Trace("middleware.Authorization", err))
		} else if !ok {
			response.APIError(c, errors.New("middleware.Authorization", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

// AuthorizationFromQuery covers the websocket upgrade path, where custom
// headers are unavailable.
func AuthorizationFromQuery(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, err := parseAuthToken(c, core, c.Query("token")); err != nil {
			response.APIError(c, errors.Trace("middleware.AuthorizationFromQuery", err))
		} else if !ok {
			response.APIError(c, errors.New("middleware.AuthorizationFromQuery", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

func parseAuthToken(c *gin.Context, core *core.Core, tokenValue string) (bool, error) {
	if tokenValue == "" {
		return false, nil
	}

	claims, err := security.VerifyAuthToken(core.Cfg().Security.JWTSecret, tokenValue)
	if err != nil {
		return false, err
	}

	c.Set(v1.TOKEN_CONTEXT_KEY, *claims)
	c.Set("user", claims.User)
	return true, nil
}

// VerifyAdmin gates admin routes on the role carried in the token claims.
func VerifyAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := v1.InjectTokenClaim(c)
		if !ok || claims.Role != "admin" {
			response.APIError(c, errors.New("middleware.VerifyAdmin", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden))
		}
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Authorization, X-Appid")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(genKeyFunc(c), opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
