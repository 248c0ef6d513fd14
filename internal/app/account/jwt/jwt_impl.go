package jwt

import (
	"errors"
	"strconv"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/jwt"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL = time.Hour
	bearerPrefix      = "Bearer "
)

// Sub-second iat/exp keep a token valid for its full TTL.
func init() {
	jwt.TimePrecision = time.Millisecond
}

type JwtUtilImpl struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*JwtUtilImpl)

func WithClock(now func() time.Time) Option {
	return func(j *JwtUtilImpl) { j.now = now }
}

// NewJWTUtil never fails on a missing secret: Issue and Verify report
// ErrMisconfigured instead, so only endpoints that need the key break.
func NewJWTUtil(cfg *config.Config, opts ...Option) *JwtUtilImpl {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	j := &JwtUtilImpl{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

func (j *JwtUtilImpl) Issue(acc model.Account) (token string, exp time.Time, err error) {
	if len(j.secret) == 0 {
		return "", time.Time{}, customErrors.ErrMisconfigured
	}
	now := j.now()

	claims := jwt2.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(acc.ID, 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			ID:        uuid.NewString(),
		},
		AccountID: acc.ID,
		Username:  acc.Username,
		Verified:  acc.Verified,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign session token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) Verify(raw string) (jwt2.SessionClaims, error) {
	if raw == "" {
		return jwt2.SessionClaims{}, customErrors.ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt2.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if len(j.secret) == 0 {
			return nil, customErrors.ErrMisconfigured
		}
		return j.secret, nil
	}, opts...)

	switch {
	case errors.Is(err, customErrors.ErrMisconfigured):
		return jwt2.SessionClaims{}, customErrors.ErrMisconfigured
	case errors.Is(err, jwt.ErrTokenExpired):
		return jwt2.SessionClaims{}, customErrors.ErrTokenExpired
	case err != nil || !token.Valid:
		return jwt2.SessionClaims{}, customErrors.ErrInvalidSignature
	}

	claims, ok := token.Claims.(*jwt2.SessionClaims)
	if !ok || claims.AccountID == 0 || claims.Subject != strconv.FormatInt(claims.AccountID, 10) {
		return jwt2.SessionClaims{}, customErrors.ErrInvalidSignature
	}
	return *claims, nil
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", customErrors.ErrMissingToken
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", customErrors.ErrMissingToken
	}
	return token, nil
}
