package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/security"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type AuthLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAuthLogic(ctx context.Context, core *core.Core) *AuthLogic {
	return &AuthLogic{
		ctx:  ctx,
		core: core,
	}
}

type LoginResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates an operator account. The first account of an appid becomes
// the admin.
func (l *AuthLogic) Register(name, email, password string) (*LoginResult, error) {
	appid := l.core.Cfg().DefaultAppid()

	exist, err := l.core.Store().UserStore().GetByEmail(l.ctx, appid, email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthLogic.Register.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("AuthLogic.Register.exist", i18n.ERROR_EMAIL_REGISTERED, nil).Code(http.StatusConflict)
	}

	total, err := l.core.Store().UserStore().Total(l.ctx, appid)
	if err != nil {
		return nil, errors.New("AuthLogic.Register.UserStore.Total", i18n.ERROR_INTERNAL, err)
	}

	role := types.USER_ROLE_MEMBER
	if total == 0 {
		role = types.USER_ROLE_ADMIN
	}

	salt := utils.RandomStr(10)
	user := types.User{
		ID:        utils.GenRandomID(),
		Appid:     appid,
		Name:      name,
		Email:     email,
		Salt:      salt,
		Password:  utils.GenUserPassword(salt, password),
		Role:      role,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	if err = l.core.Store().UserStore().Create(l.ctx, user); err != nil {
		return nil, errors.New("AuthLogic.Register.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}

	return l.issueToken(user)
}

func (l *AuthLogic) Login(email, password string) (*LoginResult, error) {
	appid := l.core.Cfg().DefaultAppid()

	user, err := l.core.Store().UserStore().GetByEmail(l.ctx, appid, email)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("AuthLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if user == nil || user.Password != utils.GenUserPassword(user.Salt, password) {
		return nil, errors.New("AuthLogic.Login.incorrect", i18n.ERROR_LOGIN_INCORRECT, nil).Code(http.StatusForbidden)
	}

	return l.issueToken(*user)
}

func (l *AuthLogic) issueToken(user types.User) (*LoginResult, error) {
	token, err := security.GenerateAuthToken(
		l.core.Cfg().Security.JWTSecret,
		user.Appid, user.ID, string(user.Role),
		l.core.Cfg().Security.TokenTTL(),
	)
	if err != nil {
		return nil, errors.New("AuthLogic.issueToken", i18n.ERROR_INTERNAL, err)
	}

	return &LoginResult{
		Token: token,
		User:  user,
	}, nil
}
