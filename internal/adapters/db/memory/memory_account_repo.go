package memory

import (
	"context"
	"sync"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/google/uuid"
)

// MemoryAccountRepo keeps accounts in process memory. Used for local runs and tests.
type MemoryAccountRepo struct {
	mu         sync.RWMutex
	accounts   []model.Account
	byUsername map[string]int
	byEmail    map[string]int
	now        func() time.Time
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byUsername: make(map[string]int),
		byEmail:    make(map[string]int),
		now:        time.Now,
	}
}

func (m *MemoryAccountRepo) CreateAccount(_ context.Context, in model.NewAccount) (model.Account, error) {
	if err := repo.CheckNewAccount(in); err != nil {
		return model.Account{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var taken []string
	if _, ok := m.byUsername[in.Username]; ok {
		taken = append(taken, string(model.FieldUsername))
	}
	if _, ok := m.byEmail[in.Email]; ok {
		taken = append(taken, string(model.FieldEmail))
	}
	if len(taken) > 0 {
		return model.Account{}, &customErrors.ConstraintError{Fields: taken}
	}

	account := model.Account{
		ID:             uuid.New(),
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		CreatedAt:      m.now().UTC(),
	}
	m.accounts = append(m.accounts, account)
	m.byUsername[account.Username] = len(m.accounts) - 1
	m.byEmail[account.Email] = len(m.accounts) - 1

	return account, nil
}

func (m *MemoryAccountRepo) FindAccountBy(_ context.Context, field model.Field, value string) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch field {
	case model.FieldUsername:
		if i, ok := m.byUsername[value]; ok {
			return m.accounts[i], nil
		}
	case model.FieldEmail:
		if i, ok := m.byEmail[value]; ok {
			return m.accounts[i], nil
		}
	case model.FieldID:
		for _, a := range m.accounts {
			if a.ID.String() == value {
				return a, nil
			}
		}
	default:
		return model.Account{}, customErrors.ErrUnsupportedField
	}
	return model.Account{}, customErrors.ErrNotFound
}

func (m *MemoryAccountRepo) ListAccountsExcluding(_ context.Context, username string) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		if a.Username != username {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryAccountRepo) Ping(context.Context) error { return nil }
