package jwt

import (
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is fixed: clients rely on a one hour session.
const SessionTTL = time.Hour

type JwtUtilImpl struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type Option func(*JwtUtilImpl)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JwtUtilImpl) { j.now = now }
}

func WithIssuer(issuer string) Option {
	return func(j *JwtUtilImpl) { j.issuer = issuer }
}

func NewJWTUtil(secret string, opts ...Option) (*JwtUtilImpl, error) {
	if secret == "" {
		return nil, customErrors.ErrMissingSecret
	}
	j := &JwtUtilImpl{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *JwtUtilImpl) IssueSessionToken(username string) (string, model.SessionClaims, error) {
	now := j.now()

	claims := jwt2.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now)),
			ID:        uuid.NewString(),
		},
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", model.SessionClaims{}, customErrors.WrapInternal(err, "sign session token")
	}

	return signed, toModel(claims), nil
}

func (j *JwtUtilImpl) ValidateSessionToken(raw string) (model.SessionClaims, error) {
	if raw == "" {
		return model.SessionClaims{}, customErrors.ErrTokenMissing
	}

	// время проверяем сами: библиотека считает now == exp уже истёкшим
	token, err := jwt.ParseWithClaims(raw, &jwt2.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return model.SessionClaims{}, customErrors.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*jwt2.SessionClaims)
	if !ok || claims.Username == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return model.SessionClaims{}, customErrors.ErrTokenMalformed
	}
	if j.issuer != "" && claims.Issuer != j.issuer {
		return model.SessionClaims{}, customErrors.ErrTokenMalformed
	}
	if j.now().After(claims.ExpiresAt.Time) {
		return model.SessionClaims{}, customErrors.ErrTokenExpired
	}

	return toModel(*claims), nil
}

// expiry rounds up to whole seconds so the encoded exp is never earlier than now+SessionTTL.
func expiry(now time.Time) time.Time {
	exp := now.Add(SessionTTL)
	if sec := exp.Truncate(time.Second); sec.Before(exp) {
		return sec.Add(time.Second)
	}
	return exp
}

func toModel(c jwt2.SessionClaims) model.SessionClaims {
	out := model.SessionClaims{Username: c.Username}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
