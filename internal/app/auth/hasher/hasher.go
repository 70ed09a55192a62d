package hasher

import (
	"fmt"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	domain "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/hasher"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// New returns the hasher for the configured algorithm.
func New(algorithm string) (domain.PasswordHasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(DefaultBcryptCost), nil
	case AlgorithmArgon2id:
		return NewArgon2id(DefaultArgon2Params), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

func checkPlaintext(password string) error {
	if password == "" {
		return fmt.Errorf("%w: empty", customErrors.ErrInvalidPassword)
	}
	return nil
}
