package model

import (
	"time"
)

type State string

const (
	StateUnverified State = "unverified"
	StateVerified   State = "verified"
)

// Account is a row of the users table. Each code pointer is nil exactly when
// its expiry pointer is nil.
type Account struct {
	ID                    int64  `gorm:"primaryKey;autoIncrement"`
	Username              string `gorm:"size:50;not null;uniqueIndex"`
	Email                 string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash          string `gorm:"not null"`
	Verified              bool   `gorm:"not null"`
	VerificationCode      *string
	VerificationExpiresAt *time.Time
	ResetCode             *string `gorm:"index"`
	ResetExpiresAt        *time.Time
	Bio                   string
	ProfilePictureURL     string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Account) TableName() string { return "users" }

func (a Account) State() State {
	if a.Verified {
		return StateVerified
	}
	return StateUnverified
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   Account
}
