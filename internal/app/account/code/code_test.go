package code

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEngine_GenerateRangeAndTTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEngine(0, 0, WithClock(func() time.Time { return now }))

	for i := 0; i < 500; i++ {
		c, err := e.Generate(PurposeEmailVerification)
		require.NoError(t, err)
		require.Len(t, c.Value, 6)
		n, err := strconv.Atoi(c.Value)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
		require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt)
	}

	c, err := e.Generate(PurposePasswordReset)
	require.NoError(t, err)
	require.Equal(t, now.Add(30*time.Minute), c.ExpiresAt)
}

func TestEngine_GenerateRandomFailure(t *testing.T) {
	e := NewEngine(time.Minute, time.Minute, WithRandom(bytes.NewReader(nil)))
	_, err := e.Generate(PurposeEmailVerification)
	require.Error(t, err)
	require.True(t, customErrors.IsInternal(err))
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Minute)

	require.NoError(t, Validate("123456", ptr("123456"), &exp, now))
	require.NoError(t, Validate("123456", ptr("123456"), &exp, exp), "expiry instant is still valid")

	require.ErrorIs(t, Validate("654321", ptr("123456"), &exp, now), customErrors.ErrInvalidCode)
	require.ErrorIs(t, Validate("123456", nil, nil, now), customErrors.ErrInvalidCode)
	require.ErrorIs(t, Validate("", ptr("123456"), &exp, now), customErrors.ErrInvalidCode)

	require.ErrorIs(t, Validate("123456", ptr("123456"), &exp, exp.Add(time.Nanosecond)), customErrors.ErrCodeExpired)
	require.ErrorIs(t, Validate("123456", ptr("123456"), nil, now), customErrors.ErrCodeExpired)
}

func TestResetCodeRoundTrip(t *testing.T) {
	issued := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	e := NewEngine(0, 0, WithClock(func() time.Time { return issued }))

	c, err := e.Generate(PurposePasswordReset)
	require.NoError(t, err)

	before := issued.Add(29*time.Minute + 59*time.Second)
	require.NoError(t, Validate(c.Value, &c.Value, &c.ExpiresAt, before))

	after := issued.Add(30*time.Minute + time.Second)
	require.ErrorIs(t, Validate(c.Value, &c.Value, &c.ExpiresAt, after), customErrors.ErrCodeExpired)
}
