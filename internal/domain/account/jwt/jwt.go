package jwt

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	"github.com/golang-jwt/jwt/v5"
)

type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"uid"`
	Username  string `json:"username"`
	Verified  bool   `json:"verified"`
}

type SessionUtil interface {
	Issue(acc model.Account) (token string, exp time.Time, err error)
	Verify(token string) (claims SessionClaims, err error)
}
