package repo

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
)

type AccountRepo interface {
	CreateAccount(ctx context.Context, acc *model.Account) error

	GetAccountByID(ctx context.Context, id int64) (model.Account, error)

	GetAccountByEmail(ctx context.Context, email string) (model.Account, error)

	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)

	UsernameTakenByOther(ctx context.Context, username string, id int64) (bool, error)

	// ResetCodeInUse reports whether any account still holds code, expired or not.
	ResetCodeInUse(ctx context.Context, code string) (bool, error)

	SetVerificationCode(ctx context.Context, id int64, code string, expiresAt time.Time) error

	SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error

	UpdateProfile(ctx context.Context, id int64, username, bio string) error

	SetProfilePicture(ctx context.Context, id int64, url string) error

	// Transaction runs fn inside one database transaction. fn returning an
	// error rolls back every statement issued through tx.
	Transaction(ctx context.Context, fn func(tx AccountTx) error) error
}

// AccountTx is the set of row-locking operations used by state transitions.
type AccountTx interface {
	LockByEmail(ctx context.Context, email string) (model.Account, error)

	LockByResetCode(ctx context.Context, code string) (model.Account, error)

	MarkVerified(ctx context.Context, id int64) error

	ClearVerificationCode(ctx context.Context, id int64) error

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	ClearResetCode(ctx context.Context, id int64) error
}
