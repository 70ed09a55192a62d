package model

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordDigest string
	CreatedAt      time.Time
}

// NewAccount is what the service hands to a store; ID and CreatedAt are the store's job.
type NewAccount struct {
	Username       string
	Email          string
	PasswordDigest string
}

// Field names a lookup column of an account.
type Field string

const (
	FieldID       Field = "id"
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
)

func (f Field) Valid() bool {
	switch f {
	case FieldID, FieldUsername, FieldEmail:
		return true
	}
	return false
}

type SessionClaims struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Session struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}
