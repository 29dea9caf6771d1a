package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/avatarops-ai/avatarops/pkg/errors"
	"github.com/avatarops-ai/avatarops/pkg/i18n"
)

type TokenClaims struct {
	User  string `json:"user"`
	Appid string `json:"appid"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// GenerateAuthToken signs an HS256 token for a logged-in user.
func GenerateAuthToken(secret, appid, userID, role string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		User:  userID,
		Appid: appid,
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func VerifyAuthToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.New("security.VerifyAuthToken", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}
	if !token.Valid {
		return nil, errors.New("security.VerifyAuthToken.invalid", i18n.ERROR_INVALID_TOKEN, nil).Code(http.StatusUnauthorized)
	}
	return claims, nil
}
