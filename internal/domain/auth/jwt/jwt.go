package jwt

import (
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload of a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

type JWTUtil interface {
	IssueSessionToken(username string) (token string, claims model.SessionClaims, err error)
	ValidateSessionToken(token string) (model.SessionClaims, error)
}
