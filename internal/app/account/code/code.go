// Package code issues and checks the short-lived numeric codes used for email
// verification and password reset.
package code

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
)

type Purpose int

const (
	PurposeEmailVerification Purpose = iota
	PurposePasswordReset
)

func (p Purpose) String() string {
	switch p {
	case PurposeEmailVerification:
		return "email_verification"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

const (
	DefaultVerificationTTL = 15 * time.Minute
	DefaultResetTTL        = 30 * time.Minute

	minCode = 100000
	maxCode = 999999
)

var codeSpan = big.NewInt(maxCode - minCode + 1)

type Code struct {
	Value     string
	ExpiresAt time.Time
}

type Engine struct {
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
	rand            io.Reader
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRandom(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// NewEngine falls back to the default TTL for any non-positive value.
func NewEngine(verificationTTL, resetTTL time.Duration, opts ...Option) *Engine {
	if verificationTTL <= 0 {
		verificationTTL = DefaultVerificationTTL
	}
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	e := &Engine{
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
		now:             time.Now,
		rand:            rand.Reader,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) TTL(p Purpose) time.Duration {
	if p == PurposePasswordReset {
		return e.resetTTL
	}
	return e.verificationTTL
}

// Generate draws a code uniformly from [100000, 999999].
func (e *Engine) Generate(p Purpose) (Code, error) {
	n, err := rand.Int(e.rand, codeSpan)
	if err != nil {
		return Code{}, customErrors.WrapInternal(err, "generate "+p.String()+" code")
	}
	return Code{
		Value:     fmt.Sprintf("%d", n.Int64()+minCode),
		ExpiresAt: e.now().Add(e.TTL(p)),
	}, nil
}

func (e *Engine) Now() time.Time { return e.now() }

// Validate checks a submitted code against the stored slot. A nil stored code
// never matches. The code is still valid at the exact expiry instant.
func Validate(submitted string, stored *string, storedExpiry *time.Time, now time.Time) error {
	if stored == nil || subtle.ConstantTimeCompare([]byte(submitted), []byte(*stored)) != 1 {
		return customErrors.ErrInvalidCode
	}
	if storedExpiry == nil || now.After(*storedExpiry) {
		return customErrors.ErrCodeExpired
	}
	return nil
}
