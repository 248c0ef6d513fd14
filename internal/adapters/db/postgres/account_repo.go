package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/errors"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/model"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/repo"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

var _ repo.AccountRepo = (*AccountRepo)(nil)

func (p *AccountRepo) CreateAccount(ctx context.Context, acc *model.Account) error {
	if err := p.db.WithContext(ctx).Create(acc).Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "CreateAccount")
	}
	return nil
}

func (p *AccountRepo) GetAccountByID(ctx context.Context, id int64) (model.Account, error) {
	var acc model.Account
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&acc)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "GetAccountByID")
	}
	return acc, nil
}

func (p *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	var acc model.Account
	res := p.db.WithContext(ctx).Where("email = ?", email).First(&acc)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "GetAccountByEmail")
	}
	return acc, nil
}

func (p *AccountRepo) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	if err != nil {
		return false, customErrors.WrapInternal(err, "UsernameOrEmailTaken")
	}
	return n > 0, nil
}

func (p *AccountRepo) UsernameTakenByOther(ctx context.Context, username string, id int64) (bool, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ? AND id <> ?", username, id).
		Count(&n).Error
	if err != nil {
		return false, customErrors.WrapInternal(err, "UsernameTakenByOther")
	}
	return n > 0, nil
}

// ResetCodeInUse counts expired slots too: LockByResetCode still matches them
// until they are cleared.
func (p *AccountRepo) ResetCodeInUse(ctx context.Context, code string) (bool, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&model.Account{}).
		Where("reset_code = ?", code).
		Count(&n).Error
	if err != nil {
		return false, customErrors.WrapInternal(err, "ResetCodeInUse")
	}
	return n > 0, nil
}

func (p *AccountRepo) SetVerificationCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	return updateAccount(ctx, p.db, id, "SetVerificationCode", map[string]any{
		"verification_code":       code,
		"verification_expires_at": expiresAt,
	})
}

func (p *AccountRepo) SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	return updateAccount(ctx, p.db, id, "SetResetCode", map[string]any{
		"reset_code":       code,
		"reset_expires_at": expiresAt,
	})
}

func (p *AccountRepo) UpdateProfile(ctx context.Context, id int64, username, bio string) error {
	return updateAccount(ctx, p.db, id, "UpdateProfile", map[string]any{
		"username": username,
		"bio":      bio,
	})
}

func (p *AccountRepo) SetProfilePicture(ctx context.Context, id int64, url string) error {
	return updateAccount(ctx, p.db, id, "SetProfilePicture", map[string]any{
		"profile_picture_url": url,
	})
}

func (p *AccountRepo) Transaction(ctx context.Context, fn func(tx repo.AccountTx) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&accountTx{db: tx})
	})
}

// accountTx issues every statement on one transaction and locks the rows it reads.
type accountTx struct {
	db *gorm.DB
}

func (t *accountTx) LockByEmail(ctx context.Context, email string) (model.Account, error) {
	var acc model.Account
	res := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ?", email).
		First(&acc)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "LockByEmail")
	}
	return acc, nil
}

// LockByResetCode refuses to guess when two live resets share a code.
func (t *accountTx) LockByResetCode(ctx context.Context, code string) (model.Account, error) {
	var found []model.Account
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reset_code = ?", code).
		Limit(2).
		Find(&found).Error
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "LockByResetCode")
	}
	switch len(found) {
	case 0:
		return model.Account{}, customErrors.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return model.Account{}, customErrors.NewInvalidArgument("reset code is ambiguous, include the account email")
	}
}

func (t *accountTx) MarkVerified(ctx context.Context, id int64) error {
	return updateAccount(ctx, t.db, id, "MarkVerified", map[string]any{
		"verified":                true,
		"verification_code":       nil,
		"verification_expires_at": nil,
	})
}

func (t *accountTx) ClearVerificationCode(ctx context.Context, id int64) error {
	return updateAccount(ctx, t.db, id, "ClearVerificationCode", map[string]any{
		"verification_code":       nil,
		"verification_expires_at": nil,
	})
}

func (t *accountTx) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return updateAccount(ctx, t.db, id, "UpdatePassword", map[string]any{
		"password_hash":    passwordHash,
		"reset_code":       nil,
		"reset_expires_at": nil,
	})
}

func (t *accountTx) ClearResetCode(ctx context.Context, id int64) error {
	return updateAccount(ctx, t.db, id, "ClearResetCode", map[string]any{
		"reset_code":       nil,
		"reset_expires_at": nil,
	})
}

func updateAccount(ctx context.Context, db *gorm.DB, id int64, op string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(fields)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, op)
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
