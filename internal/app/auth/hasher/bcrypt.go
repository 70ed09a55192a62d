package hasher

import (
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost keeps digests compatible with accounts created by the legacy service.
const DefaultBcryptCost = 6

// bcrypt only reads this many bytes; longer input is cut like bcryptjs does.
const bcryptMaxInput = 72

type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if err := checkPlaintext(password); err != nil {
		return "", err
	}
	digest, err := bcrypt.GenerateFromPassword(truncate(password), b.cost)
	if err != nil {
		return "", customErrors.WrapInternal(err, "bcrypt")
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), truncate(password)) == nil
}

func truncate(password string) []byte {
	p := []byte(password)
	if len(p) > bcryptMaxInput {
		p = p[:bcryptMaxInput]
	}
	return p
}
