package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

// CodeMessage is an out-of-band delivery of a one-time code.
type CodeMessage struct {
	Kind     Kind
	To       string
	Code     string
	ValidFor time.Duration
}

type Notifier interface {
	SendCode(ctx context.Context, msg CodeMessage) error
}
