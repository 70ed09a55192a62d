package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
)

// AccountRepo is the durable account store. Implementations enforce username and
// email uniqueness atomically and report violations as *errors.ConstraintError
// naming the offending fields.
type AccountRepo interface {
	CreateAccount(ctx context.Context, in model.NewAccount) (model.Account, error)

	FindAccountBy(ctx context.Context, field model.Field, value string) (model.Account, error)

	ListAccountsExcluding(ctx context.Context, username string) ([]model.Account, error)

	Ping(ctx context.Context) error
}
