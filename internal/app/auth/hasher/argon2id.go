package hasher

import (
	"github.com/alexedwards/argon2id"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
)

var DefaultArgon2Params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Argon2id struct {
	params *argon2id.Params
}

func NewArgon2id(params *argon2id.Params) *Argon2id {
	if params == nil {
		params = DefaultArgon2Params
	}
	return &Argon2id{params: params}
}

func (a *Argon2id) Hash(password string) (string, error) {
	if err := checkPlaintext(password); err != nil {
		return "", err
	}
	digest, err := argon2id.CreateHash(password, a.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "argon2id")
	}
	return digest, nil
}

func (a *Argon2id) Verify(password, digest string) bool {
	ok, err := argon2id.ComparePasswordAndHash(password, digest)
	if err != nil {
		// битый digest – просто несовпадение
		return false
	}
	return ok
}
