package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/security"
	"github.com/avatarops-ai/avatarops/pkg/types"
)

const (
	TOKEN_CONTEXT_KEY = "__avatarops.access_token"
	LANGUAGE_KEY      = "__avatarops.accept_language"
	APPID_KEY         = "__avatarops.appid"
)

func InjectAppid(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(APPID_KEY).(string)
	return val, ok
}

// InjectTokenClaim gets the verified token claims from context.
func InjectTokenClaim(ctx context.Context) (security.TokenClaims, bool) {
	val, ok := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return val, ok
}

func InjectLanguage(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(LANGUAGE_KEY).(string)
	return val, ok
}

type UserInfo interface {
	GetUserInfo() security.TokenClaims
	RequireAdmin() error
}

type _userInfo struct {
	ctx  context.Context
	core *core.Core
	u    *security.TokenClaims
}

func (u *_userInfo) GetUserInfo() security.TokenClaims {
	return *u.u
}

func (u *_userInfo) RequireAdmin() error {
	if u.u.Role != string(types.USER_ROLE_ADMIN) {
		return errors.New("_userInfo.RequireAdmin", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}
	return nil
}

func SetupUserInfo(ctx context.Context, core *core.Core) UserInfo {
	userInfo, ok := InjectTokenClaim(ctx)
	if !ok {
		slog.Error("Not found user in context", slog.String("component", "logic.v1.setupUserInfo"))
		userInfo = security.TokenClaims{}
	}
	return &_userInfo{
		ctx:  ctx,
		u:    &userInfo,
		core: core,
	}
}
