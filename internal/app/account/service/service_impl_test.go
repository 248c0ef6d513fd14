package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/code"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/jwt"
	appsvc "github.com/Miraines/MoonyAndStarry/community-service/internal/app/account/service"
	accErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/repo"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/validate"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type accountRepoStub struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	nextID      int64
	accounts    map[int64]model.Account
	inserts     int
	alwaysInUse bool
}

func newAccountRepoStub() *accountRepoStub {
	return &accountRepoStub{accounts: make(map[int64]model.Account)}
}

func (r *accountRepoStub) get(id int64) model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id]
}

func (r *accountRepoStub) byEmail(email string) (model.Account, bool) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, true
		}
	}
	return model.Account{}, false
}

func (r *accountRepoStub) CreateAccount(_ context.Context, acc *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == acc.Email || a.Username == acc.Username {
			return accErrors.ErrAlreadyExists
		}
	}
	r.nextID++
	acc.ID = r.nextID
	r.accounts[acc.ID] = *acc
	r.inserts++
	return nil
}

func (r *accountRepoStub) GetAccountByID(_ context.Context, id int64) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return model.Account{}, accErrors.ErrNotFound
	}
	return a, nil
}

func (r *accountRepoStub) GetAccountByEmail(_ context.Context, email string) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail(email)
	if !ok {
		return model.Account{}, accErrors.ErrNotFound
	}
	return a, nil
}

func (r *accountRepoStub) UsernameOrEmailTaken(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email || a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepoStub) UsernameTakenByOther(_ context.Context, username string, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username && a.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepoStub) ResetCodeInUse(_ context.Context, c string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alwaysInUse {
		return true, nil
	}
	for _, a := range r.accounts {
		if a.ResetCode != nil && *a.ResetCode == c {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepoStub) update(id int64, fn func(a *model.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return accErrors.ErrNotFound
	}
	fn(&a)
	r.accounts[id] = a
	return nil
}

func (r *accountRepoStub) SetVerificationCode(_ context.Context, id int64, c string, exp time.Time) error {
	return r.update(id, func(a *model.Account) { a.VerificationCode, a.VerificationExpiresAt = &c, &exp })
}

func (r *accountRepoStub) SetResetCode(_ context.Context, id int64, c string, exp time.Time) error {
	return r.update(id, func(a *model.Account) { a.ResetCode, a.ResetExpiresAt = &c, &exp })
}

func (r *accountRepoStub) UpdateProfile(_ context.Context, id int64, username, bio string) error {
	return r.update(id, func(a *model.Account) { a.Username, a.Bio = username, bio })
}

func (r *accountRepoStub) SetProfilePicture(_ context.Context, id int64, url string) error {
	return r.update(id, func(a *model.Account) { a.ProfilePictureURL = url })
}

// Transaction serialises callers and only publishes the staged rows when fn
// succeeds.
func (r *accountRepoStub) Transaction(_ context.Context, fn func(tx repo.AccountTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	staged := make(map[int64]model.Account, len(r.accounts))
	for k, v := range r.accounts {
		staged[k] = v
	}
	r.mu.Unlock()

	if err := fn(&accountTxStub{rows: staged}); err != nil {
		return err
	}

	r.mu.Lock()
	r.accounts = staged
	r.mu.Unlock()
	return nil
}

type accountTxStub struct{ rows map[int64]model.Account }

func (t *accountTxStub) LockByEmail(_ context.Context, email string) (model.Account, error) {
	for _, a := range t.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, accErrors.ErrNotFound
}

func (t *accountTxStub) LockByResetCode(_ context.Context, c string) (model.Account, error) {
	for _, a := range t.rows {
		if a.ResetCode != nil && *a.ResetCode == c {
			return a, nil
		}
	}
	return model.Account{}, accErrors.ErrNotFound
}

func (t *accountTxStub) set(id int64, fn func(a *model.Account)) error {
	a, ok := t.rows[id]
	if !ok {
		return accErrors.ErrNotFound
	}
	fn(&a)
	t.rows[id] = a
	return nil
}

func (t *accountTxStub) MarkVerified(_ context.Context, id int64) error {
	return t.set(id, func(a *model.Account) {
		a.Verified, a.VerificationCode, a.VerificationExpiresAt = true, nil, nil
	})
}

func (t *accountTxStub) ClearVerificationCode(_ context.Context, id int64) error {
	return t.set(id, func(a *model.Account) { a.VerificationCode, a.VerificationExpiresAt = nil, nil })
}

func (t *accountTxStub) UpdatePassword(_ context.Context, id int64, hash string) error {
	return t.set(id, func(a *model.Account) {
		a.PasswordHash, a.ResetCode, a.ResetExpiresAt = hash, nil, nil
	})
}

func (t *accountTxStub) ClearResetCode(_ context.Context, id int64) error {
	return t.set(id, func(a *model.Account) { a.ResetCode, a.ResetExpiresAt = nil, nil })
}

type notifierStub struct {
	mu   sync.Mutex
	sent []notify.CodeMessage
	err  error
}

func (n *notifierStub) SendCode(_ context.Context, msg notify.CodeMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *notifierStub) last(t *testing.T) notify.CodeMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

/* ───────────────────────────── helpers ───────────────────────────── */

type fixture struct {
	svc      appsvc.Service
	repo     *accountRepoStub
	notifier *notifierStub
	logs     *observer.ObservedLogs
	now      time.Time
	mu       sync.Mutex
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newAccountRepoStub(),
		notifier: &notifierStub{},
		now:      time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{
		JWTSecret:      secret,
		Issuer:         "test",
		SessionTTL:     time.Hour,
		PasswordPepper: "pepper",
	}
	util := jwt.NewJWTUtil(cfg, jwt.WithClock(f.clock))
	codes := code.NewEngine(15*time.Minute, 30*time.Minute, code.WithClock(f.clock))

	core, logs := observer.New(zap.InfoLevel)
	f.logs = logs
	f.svc = appsvc.New(f.repo, util, codes, f.notifier, cfg, validate.New(), zap.New(core))
	return f
}

const goodSecret = "0123456789abcdef0123456789abcdef"

func register(t *testing.T, f *fixture, username, email string) int64 {
	t.Helper()
	id, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Username: username, Email: email, Password: "secret1", Bio: "hi",
	})
	require.NoError(t, err)
	return id
}

func registerVerified(t *testing.T, f *fixture, username, email string) int64 {
	t.Helper()
	id := register(t, f, username, email)
	msg := f.notifier.last(t)
	require.NoError(t, f.svc.Verify(context.Background(), dto.VerifyDTO{Email: email, Code: msg.Code}))
	return id
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestAccountService_RegisterThenVerify(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()

	id := register(t, f, "ana", "ana@example.com")
	acc := f.repo.get(id)
	require.False(t, acc.Verified)
	require.NotNil(t, acc.VerificationCode)
	require.NotNil(t, acc.VerificationExpiresAt)
	require.Equal(t, f.now.Add(15*time.Minute), *acc.VerificationExpiresAt)
	require.NotEqual(t, "secret1", acc.PasswordHash)

	msg := f.notifier.last(t)
	require.Equal(t, notify.KindVerification, msg.Kind)
	require.Equal(t, "ana@example.com", msg.To)
	require.Equal(t, *acc.VerificationCode, msg.Code)
	require.Equal(t, 15*time.Minute, msg.ValidFor)

	require.NoError(t, f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: msg.Code}))
	acc = f.repo.get(id)
	require.True(t, acc.Verified)
	require.Nil(t, acc.VerificationCode)
	require.Nil(t, acc.VerificationExpiresAt)

	err := f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: msg.Code})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
}

func TestAccountService_RegisterInvalid(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{})
	require.True(t, accErrors.IsInvalidArgument(err))

	_, err = f.svc.Register(ctx, dto.RegisterDTO{Username: "u", Email: "bad", Password: "secret1"})
	require.True(t, accErrors.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "email must be a valid email")
	require.NotContains(t, err.Error(), "RegisterDTO")
	require.NotContains(t, err.Error(), "Key:")

	_, err = f.svc.Register(ctx, dto.RegisterDTO{Username: "u", Email: "u@example.com", Password: "12345"})
	require.True(t, accErrors.IsInvalidArgument(err))
	require.Zero(t, f.repo.inserts)
}

func TestAccountService_LogsHashedEmailOnce(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	registerVerified(t, f, "ana", "Ana@Example.com")

	_, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("ana@example.com"))
	digest := hex.EncodeToString(sum[:])
	for _, msg := range []string{"account registered", "login succeeded"} {
		entries := f.logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		require.Equal(t, digest, entries[0].ContextMap()["email_sha256"])
	}
	for _, e := range f.logs.All() {
		for _, field := range e.Context {
			require.NotContains(t, field.String, "ana@example.com")
		}
	}
}

func TestAccountService_RegisterDuplicate(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	register(t, f, "ana", "ana@example.com")
	sent := len(f.notifier.sent)

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Username: "ana", Email: "other@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrAlreadyExists)

	_, err = f.svc.Register(ctx, dto.RegisterDTO{Username: "bob", Email: "ANA@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrAlreadyExists)

	require.Equal(t, 1, f.repo.inserts)
	require.Len(t, f.notifier.sent, sent)
}

func TestAccountService_RegisterNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, goodSecret)
	f.notifier.err = errors.New("smtp down")

	id, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Username: "ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	require.NotZero(t, id)
}

func TestAccountService_VerifyFailures(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := register(t, f, "ana", "ana@example.com")
	good := f.notifier.last(t).Code

	err := f.svc.Verify(ctx, dto.VerifyDTO{Email: "nobody@example.com", Code: good})
	require.ErrorIs(t, err, accErrors.ErrNotFound)

	wrong := "100000"
	if good == wrong {
		wrong = "100001"
	}
	err = f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: wrong})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
	require.NotNil(t, f.repo.get(id).VerificationCode, "a wrong guess keeps the code")

	err = f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com"})
	require.True(t, accErrors.IsInvalidArgument(err))
}

func TestAccountService_VerifyExpiredScrubsCode(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := register(t, f, "ana", "ana@example.com")
	good := f.notifier.last(t).Code

	f.advance(15*time.Minute + time.Second)

	err := f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: good})
	require.ErrorIs(t, err, accErrors.ErrCodeExpired)

	acc := f.repo.get(id)
	require.False(t, acc.Verified)
	require.Nil(t, acc.VerificationCode)
	require.Nil(t, acc.VerificationExpiresAt)

	err = f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: good})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
}

func TestAccountService_ConcurrentVerifySucceedsOnce(t *testing.T) {
	f := newFixture(t, goodSecret)
	register(t, f, "ana", "ana@example.com")
	good := f.notifier.last(t).Code

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.Verify(context.Background(), dto.VerifyDTO{Email: "ana@example.com", Code: good})
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, accErrors.ErrInvalidCode)
	}
	require.Equal(t, 1, ok)
}

func TestAccountService_ResendVerification(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := register(t, f, "ana", "ana@example.com")

	f.advance(20 * time.Minute)
	require.NoError(t, f.svc.ResendVerification(ctx, dto.ResendVerificationDTO{Email: "ana@example.com"}))
	second := f.notifier.last(t)
	require.Equal(t, f.now.Add(15*time.Minute), *f.repo.get(id).VerificationExpiresAt)

	require.NoError(t, f.svc.Verify(ctx, dto.VerifyDTO{Email: "ana@example.com", Code: second.Code}))

	sent := len(f.notifier.sent)
	require.NoError(t, f.svc.ResendVerification(ctx, dto.ResendVerificationDTO{Email: "ana@example.com"}))
	require.NoError(t, f.svc.ResendVerification(ctx, dto.ResendVerificationDTO{Email: "ghost@example.com"}))
	require.Len(t, f.notifier.sent, sent)
}

func TestAccountService_Login(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()

	register(t, f, "ana", "ana@example.com")

	_, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrAccountUnverified)

	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "wrong!"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCredentials, "unverified with bad password is still a credential failure")

	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ghost@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com"})
	require.True(t, accErrors.IsInvalidArgument(err))
}

func TestAccountService_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := registerVerified(t, f, "ana", "ana@example.com")

	sess, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, id, sess.Account.ID)
	require.Equal(t, f.now.Add(time.Hour), sess.ExpiresAt)

	claims, err := f.svc.Authenticate(ctx, "Bearer "+sess.Token)
	require.NoError(t, err)
	require.Equal(t, id, claims.AccountID)
	require.Equal(t, "ana", claims.Username)
	require.True(t, claims.Verified)

	_, err = f.svc.Authenticate(ctx, sess.Token)
	require.ErrorIs(t, err, accErrors.ErrMissingToken)

	f.advance(time.Hour)
	_, err = f.svc.Authenticate(ctx, "Bearer "+sess.Token)
	require.ErrorIs(t, err, accErrors.ErrTokenExpired)
}

func TestAccountService_LoginWithoutSecret(t *testing.T) {
	f := newFixture(t, "")
	registerVerified(t, f, "ana", "ana@example.com")

	_, err := f.svc.Login(context.Background(), dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrMisconfigured)
}

func TestAccountService_RequestPasswordResetIsEnumerationSafe(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := register(t, f, "ana", "ana@example.com")
	sent := len(f.notifier.sent)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{Email: "ghost@example.com"}))
	require.Len(t, f.notifier.sent, sent)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{Email: "ana@example.com"}))
	msg := f.notifier.last(t)
	require.Equal(t, notify.KindPasswordReset, msg.Kind)
	require.Equal(t, 30*time.Minute, msg.ValidFor)

	acc := f.repo.get(id)
	require.Equal(t, msg.Code, *acc.ResetCode)
	require.False(t, acc.Verified, "reset does not touch verification state")
	require.NotNil(t, acc.VerificationCode, "reset slot is independent of the verification slot")

	err := f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{})
	require.True(t, accErrors.IsInvalidArgument(err))
}

func TestAccountService_ResetPassword(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := registerVerified(t, f, "ana", "ana@example.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{Email: "ana@example.com"}))
	resetCode := f.notifier.last(t).Code

	f.advance(29*time.Minute + 59*time.Second)
	require.NoError(t, f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: resetCode, NewPassword: "newpass1"}))

	acc := f.repo.get(id)
	require.Nil(t, acc.ResetCode)
	require.Nil(t, acc.ResetExpiresAt)
	require.True(t, acc.Verified)

	_, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "newpass1"})
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: resetCode, NewPassword: "again12"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
}

func TestAccountService_ResetPasswordExpired(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := registerVerified(t, f, "ana", "ana@example.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{Email: "ana@example.com"}))
	resetCode := f.notifier.last(t).Code

	f.advance(30*time.Minute + time.Second)
	err := f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{
		ResetCode: resetCode, NewPassword: "newpass1", Email: "ana@example.com",
	})
	require.ErrorIs(t, err, accErrors.ErrCodeExpired)
	require.Nil(t, f.repo.get(id).ResetCode)

	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func TestAccountService_ResetPasswordExpiredCodeOnly(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	id := registerVerified(t, f, "ana", "ana@example.com")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, dto.ResetRequestDTO{Email: "ana@example.com"}))
	resetCode := f.notifier.last(t).Code

	f.advance(30*time.Minute + time.Second)
	err := f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: resetCode, NewPassword: "newpass1"})
	require.ErrorIs(t, err, accErrors.ErrCodeExpired)
	require.Nil(t, f.repo.get(id).ResetCode)
	require.Nil(t, f.repo.get(id).ResetExpiresAt)

	err = f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: resetCode, NewPassword: "newpass1"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
}

func TestAccountService_ResetPasswordInvalid(t *testing.T) {
	f := newFixture(t, goodSecret)
	ctx := context.Background()
	registerVerified(t, f, "ana", "ana@example.com")

	err := f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: "123456", NewPassword: "short"})
	require.True(t, accErrors.IsInvalidArgument(err))

	err = f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{ResetCode: "123456", NewPassword: "longenough"})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)

	err = f.svc.ResetPassword(ctx, dto.ResetPasswordDTO{
		ResetCode: "123456", NewPassword: "longenough", Email: "ghost@example.com",
	})
	require.ErrorIs(t, err, accErrors.ErrInvalidCode)
}

func TestAccountService_ResetCodeSpaceExhausted(t *testing.T) {
	f := newFixture(t, goodSecret)
	register(t, f, "ana", "ana@example.com")
	f.repo.alwaysInUse = true

	err := f.svc.RequestPasswordReset(context.Background(), dto.ResetRequestDTO{Email: "ana@example.com"})
	require.True(t, accErrors.IsInternal(err))
}
