package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/validate"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/hasher"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

type authService struct {
	accounts repo.AccountRepo
	hasher   hasher.PasswordHasher
	jwtUtil  jwt.JWTUtil
	v        *validate.Validator
	log      *zap.Logger
}

type Service interface {
	Register(context.Context, validate.RegisterInput) (model.Account, error)
	Login(context.Context, validate.LoginInput) (model.Session, error)
	ListOthers(ctx context.Context, authorization string) ([]model.Account, error)
	Authenticate(ctx context.Context, authorization string) (model.SessionClaims, error)
}

func New(
	ar repo.AccountRepo,
	ph hasher.PasswordHasher,
	jm jwt.JWTUtil,
	v *validate.Validator,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		accounts: ar, hasher: ph, jwtUtil: jm, v: v, log: log,
	}
}

func (a *authService) Register(ctx context.Context, in validate.RegisterInput) (model.Account, error) {
	if errs := a.v.ValidateRegistration(in); !errs.Empty() {
		a.log.Debug("register rejected", zap.Strings("fields", fieldNames(errs)))
		return model.Account{}, customErrors.NewUserInput("Bad Input", errs)
	}

	digest, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.Account{}, err
	}

	account, err := a.accounts.CreateAccount(ctx, model.NewAccount{
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: digest,
	})
	if err == nil {
		a.log.Info("account registered", zap.String("username", account.Username), zap.Stringer("id", account.ID))
		return account, nil
	}

	var constraintErr *customErrors.ConstraintError
	var storeErr *customErrors.StoreValidationError
	switch {
	case errors.As(err, &constraintErr):
		errs := customErrors.FieldErrors{}
		for _, field := range constraintErr.Fields {
			errs[field] = field + " is already taken"
		}
		a.log.Debug("register conflict", zap.Strings("fields", constraintErr.Fields))
		return model.Account{}, customErrors.NewUserInput("Bad Input", errs)
	case errors.As(err, &storeErr):
		errs := customErrors.FieldErrors{}
		for field, msg := range storeErr.Errors {
			errs[field] = msg
		}
		a.log.Debug("register rejected by store", zap.Strings("fields", fieldNames(errs)))
		return model.Account{}, customErrors.NewUserInput("Bad Input", errs)
	default:
		a.log.Error("register failed", zap.Error(err))
		return model.Account{}, err
	}
}

func (a *authService) Login(ctx context.Context, in validate.LoginInput) (model.Session, error) {
	if errs := a.v.ValidateLogin(in); !errs.Empty() {
		return model.Session{}, customErrors.NewUserInput("user not found", errs)
	}

	account, err := a.accounts.FindAccountBy(ctx, model.FieldUsername, in.Username)
	switch {
	case customErrors.IsNotFound(err):
		return model.Session{}, customErrors.NewUserInput("user not found",
			customErrors.FieldErrors{"username": "user not found"})
	case err != nil:
		a.log.Error("login lookup failed", zap.Error(err))
		return model.Session{}, err
	}

	if !a.hasher.Verify(in.Password, account.PasswordDigest) {
		a.log.Debug("login with wrong password", zap.String("username", in.Username))
		return model.Session{}, customErrors.NewUserInput("password is incorrect",
			customErrors.FieldErrors{"password": "password is not correct"})
	}

	token, claims, err := a.jwtUtil.IssueSessionToken(account.Username)
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{
		Account:   account,
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (a *authService) ListOthers(ctx context.Context, authorization string) ([]model.Account, error) {
	claims, err := a.Authenticate(ctx, authorization)
	if err != nil {
		return nil, err
	}

	accounts, err := a.accounts.ListAccountsExcluding(ctx, claims.Username)
	if err != nil {
		a.log.Error("list accounts failed", zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// Authenticate verifies the bearer token in an Authorization header value.
// Every failure collapses into an AuthenticationError.
func (a *authService) Authenticate(_ context.Context, authorization string) (model.SessionClaims, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return model.SessionClaims{}, customErrors.NewUnauthenticated(customErrors.ErrTokenMissing)
	}

	claims, err := a.jwtUtil.ValidateSessionToken(token)
	if err != nil {
		a.log.Debug("token rejected", zap.Error(err))
		return model.SessionClaims{}, customErrors.NewUnauthenticated(err)
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func fieldNames(errs customErrors.FieldErrors) []string {
	out := make([]string, 0, len(errs))
	for k := range errs {
		out = append(out, k)
	}
	return out
}
