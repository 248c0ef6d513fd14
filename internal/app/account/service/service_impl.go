package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/code"
	sessionjwt "github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/jwt"
	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/jwt"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/repo"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/validate"
	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

const maxResetCodeAttempts = 5

type Service interface {
	Register(context.Context, dto.RegisterDTO) (int64, error)
	Verify(context.Context, dto.VerifyDTO) error
	ResendVerification(context.Context, dto.ResendVerificationDTO) error
	Login(context.Context, dto.LoginDTO) (model.Session, error)
	RequestPasswordReset(context.Context, dto.ResetRequestDTO) error
	ResetPassword(context.Context, dto.ResetPasswordDTO) error
	Authenticate(ctx context.Context, authorization string) (jwt.SessionClaims, error)
}

type accountService struct {
	accounts repo.AccountRepo
	sessions jwt.SessionUtil
	codes    *code.Engine
	notifier notify.Notifier
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func New(
	ar repo.AccountRepo,
	su jwt.SessionUtil,
	codes *code.Engine,
	n notify.Notifier,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &accountService{
		accounts: ar, sessions: su, codes: codes, notifier: n, cfg: cfg, v: v, log: log,
	}
}

func (a *accountService) Register(ctx context.Context, in dto.RegisterDTO) (int64, error) {
	if err := validate.Struct(a.v, in); err != nil {
		return 0, err
	}
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" {
		return 0, customErrors.NewInvalidArgument("username is blank")
	}

	taken, err := a.accounts.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return 0, customErrors.WrapInternal(err, "Register")
	}
	if taken {
		return 0, customErrors.ErrAlreadyExists
	}

	passwordHash, err := argon2id.CreateHash(in.Password+a.cfg.PasswordPepper, argonParams)
	if err != nil {
		return 0, customErrors.WrapInternal(err, "Register")
	}

	c, err := a.codes.Generate(code.PurposeEmailVerification)
	if err != nil {
		return 0, err
	}

	acc := &model.Account{
		Username:              username,
		Email:                 email,
		PasswordHash:          passwordHash,
		Bio:                   in.Bio,
		VerificationCode:      &c.Value,
		VerificationExpiresAt: &c.ExpiresAt,
	}
	if err = a.accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, passThrough(err, "Register")
	}

	a.log.Info("account registered",
		zap.Int64("account_id", acc.ID),
		zap.String("email_sha256", emailDigest(email)),
	)
	a.sendCode(ctx, notify.KindVerification, email, c.Value, code.PurposeEmailVerification)
	return acc.ID, nil
}

func (a *accountService) Verify(ctx context.Context, in dto.VerifyDTO) error {
	if err := validate.Struct(a.v, in); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)

	// The expired path must commit its cleanup, so the outcome travels
	// outside the transaction.
	var outcome error
	err := a.accounts.Transaction(ctx, func(tx repo.AccountTx) error {
		acc, err := tx.LockByEmail(ctx, email)
		if err != nil {
			return err
		}
		err = code.Validate(strings.TrimSpace(in.Code), acc.VerificationCode, acc.VerificationExpiresAt, a.codes.Now())
		switch {
		case errors.Is(err, customErrors.ErrCodeExpired):
			outcome = err
			return tx.ClearVerificationCode(ctx, acc.ID)
		case err != nil:
			return err
		}
		return tx.MarkVerified(ctx, acc.ID)
	})
	if err != nil {
		return passThrough(err, "Verify")
	}
	if outcome == nil {
		a.log.Info("account verified", zap.String("email_sha256", emailDigest(email)))
	}
	return outcome
}

// ResendVerification succeeds silently for unknown or verified accounts.
func (a *accountService) ResendVerification(ctx context.Context, in dto.ResendVerificationDTO) error {
	if err := validate.Struct(a.v, in); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)

	acc, err := a.accounts.GetAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		a.log.Debug("resend for unknown email", zap.String("email_sha256", emailDigest(email)))
		return nil
	case err != nil:
		return passThrough(err, "ResendVerification")
	}
	if acc.Verified {
		return nil
	}

	c, err := a.codes.Generate(code.PurposeEmailVerification)
	if err != nil {
		return err
	}
	if err = a.accounts.SetVerificationCode(ctx, acc.ID, c.Value, c.ExpiresAt); err != nil {
		return passThrough(err, "ResendVerification")
	}
	a.sendCode(ctx, notify.KindVerification, acc.Email, c.Value, code.PurposeEmailVerification)
	return nil
}

func (a *accountService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := validate.Struct(a.v, in); err != nil {
		return model.Session{}, err
	}

	acc, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// burn the same hashing cost as a real comparison
		_, _ = argon2id.ComparePasswordAndHash(in.Password+a.cfg.PasswordPepper, a.dummy())
		return model.Session{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Session{}, passThrough(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password+a.cfg.PasswordPepper, acc.PasswordHash)
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.Session{}, customErrors.ErrInvalidCredentials
	}
	if !acc.Verified {
		return model.Session{}, customErrors.ErrAccountUnverified
	}

	token, exp, err := a.sessions.Issue(acc)
	if err != nil {
		if customErrors.IsMisconfigured(err) {
			a.log.Error("session signing key is not configured")
			return model.Session{}, err
		}
		return model.Session{}, passThrough(err, "Login")
	}
	a.log.Info("login succeeded",
		zap.Int64("account_id", acc.ID),
		zap.String("email_sha256", emailDigest(acc.Email)),
	)
	return model.Session{Token: token, ExpiresAt: exp, Account: acc}, nil
}

// RequestPasswordReset reports success for unknown emails as well.
func (a *accountService) RequestPasswordReset(ctx context.Context, in dto.ResetRequestDTO) error {
	if err := validate.Struct(a.v, in); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)

	acc, err := a.accounts.GetAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		a.log.Debug("password reset for unknown email", zap.String("email_sha256", emailDigest(email)))
		return nil
	case err != nil:
		return passThrough(err, "RequestPasswordReset")
	}

	c, err := a.freeResetCode(ctx)
	if err != nil {
		return err
	}
	if err = a.accounts.SetResetCode(ctx, acc.ID, c.Value, c.ExpiresAt); err != nil {
		return passThrough(err, "RequestPasswordReset")
	}
	a.sendCode(ctx, notify.KindPasswordReset, acc.Email, c.Value, code.PurposePasswordReset)
	return nil
}

func (a *accountService) ResetPassword(ctx context.Context, in dto.ResetPasswordDTO) error {
	if err := validate.Struct(a.v, in); err != nil {
		return err
	}
	submitted := strings.TrimSpace(in.ResetCode)
	email := normalizeEmail(in.Email)

	passwordHash, err := argon2id.CreateHash(in.NewPassword+a.cfg.PasswordPepper, argonParams)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	var outcome error
	err = a.accounts.Transaction(ctx, func(tx repo.AccountTx) error {
		var acc model.Account
		var err error
		if email != "" {
			acc, err = tx.LockByEmail(ctx, email)
		} else {
			acc, err = tx.LockByResetCode(ctx, submitted)
		}
		if errors.Is(err, customErrors.ErrNotFound) {
			return customErrors.ErrInvalidCode
		}
		if err != nil {
			return err
		}

		err = code.Validate(submitted, acc.ResetCode, acc.ResetExpiresAt, a.codes.Now())
		switch {
		case errors.Is(err, customErrors.ErrCodeExpired):
			outcome = err
			return tx.ClearResetCode(ctx, acc.ID)
		case err != nil:
			return err
		}
		return tx.UpdatePassword(ctx, acc.ID, passwordHash)
	})
	if err != nil {
		return passThrough(err, "ResetPassword")
	}
	return outcome
}

func (a *accountService) Authenticate(_ context.Context, authorization string) (jwt.SessionClaims, error) {
	raw, err := sessionjwt.ParseBearer(authorization)
	if err != nil {
		return jwt.SessionClaims{}, err
	}
	return a.sessions.Verify(raw)
}

// freeResetCode draws reset codes until one is held by no other account.
func (a *accountService) freeResetCode(ctx context.Context) (code.Code, error) {
	for i := 0; i < maxResetCodeAttempts; i++ {
		c, err := a.codes.Generate(code.PurposePasswordReset)
		if err != nil {
			return code.Code{}, err
		}
		inUse, err := a.accounts.ResetCodeInUse(ctx, c.Value)
		if err != nil {
			return code.Code{}, passThrough(err, "RequestPasswordReset")
		}
		if !inUse {
			return c, nil
		}
	}
	return code.Code{}, customErrors.WrapInternal(errors.New("reset code space exhausted"), "RequestPasswordReset")
}

func (a *accountService) sendCode(ctx context.Context, kind notify.Kind, to, value string, p code.Purpose) {
	err := a.notifier.SendCode(ctx, notify.CodeMessage{
		Kind:     kind,
		To:       to,
		Code:     value,
		ValidFor: a.codes.TTL(p),
	})
	if err != nil {
		a.log.Error("code delivery failed",
			zap.String("kind", string(kind)),
			zap.String("email_sha256", emailDigest(to)),
			zap.Error(err),
		)
	}
}

func (a *accountService) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = argon2id.CreateHash("dummy-password"+a.cfg.PasswordPepper, argonParams)
	})
	return a.dummyHash
}

// passThrough keeps domain errors intact and wraps anything else as internal.
func passThrough(err error, op string) error {
	for _, known := range []error{
		customErrors.ErrInvalidArgument,
		customErrors.ErrInternal,
		customErrors.ErrMisconfigured,
		customErrors.ErrNotFound,
		customErrors.ErrAlreadyExists,
		customErrors.ErrInvalidCode,
		customErrors.ErrCodeExpired,
		customErrors.ErrInvalidToken,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return customErrors.WrapInternal(err, op)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func emailDigest(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
