package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/avatarops-ai/avatarops/app/core"
	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type UserLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	return &UserLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

func (l *UserLogic) GetProfile() (*types.User, error) {
	claims := l.GetUserInfo()
	user, err := l.core.Store().UserStore().GetUser(l.ctx, claims.Appid, claims.User)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UserLogic.GetProfile.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	if user == nil {
		return nil, errors.New("UserLogic.GetProfile.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return user, nil
}

func (l *UserLogic) UpdateProfile(name string) error {
	if err := l.core.Store().UserStore().UpdateProfile(l.ctx, l.GetUserInfo().User, name); err != nil {
		return errors.New("UserLogic.UpdateProfile.UserStore.UpdateProfile", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *UserLogic) UpdatePassword(oldPassword, newPassword string) error {
	user, err := l.GetProfile()
	if err != nil {
		return err
	}

	if user.Password != utils.GenUserPassword(user.Salt, oldPassword) {
		return errors.New("UserLogic.UpdatePassword.incorrect", i18n.ERROR_LOGIN_INCORRECT, nil).Code(http.StatusForbidden)
	}

	salt := utils.RandomStr(10)
	if err = l.core.Store().UserStore().UpdatePassword(l.ctx, user.ID, utils.GenUserPassword(salt, newPassword), salt); err != nil {
		return errors.New("UserLogic.UpdatePassword.UserStore.UpdatePassword", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
