package repo

import (
	"sync"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/go-playground/validator/v10"
)

var (
	checkOnce sync.Once
	checker   *validator.Validate
)

type accountRecord struct {
	Username       string `validate:"required"`
	Email          string `validate:"required,email"`
	PasswordDigest string `validate:"required"`
}

var checkMessages = map[string]string{
	"Username/required":       "username is required",
	"Email/required":          "email is required",
	"Email/email":             "must be a valid email address",
	"PasswordDigest/required": "password is required",
}

var checkFields = map[string]string{
	"Username":       "username",
	"Email":          "email",
	"PasswordDigest": "password",
}

// CheckNewAccount runs the record-level rules every store applies before insert.
// A failure is returned as *errors.StoreValidationError.
func CheckNewAccount(in model.NewAccount) error {
	checkOnce.Do(func() { checker = validator.New() })

	err := checker.Struct(accountRecord{
		Username:       in.Username,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
	})
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return customErrors.WrapInternal(err, "CheckNewAccount")
	}

	fields := customErrors.FieldErrors{}
	for _, fe := range verrs {
		msg, ok := checkMessages[fe.StructField()+"/"+fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields[checkFields[fe.StructField()]] = msg
	}
	return &customErrors.StoreValidationError{Errors: fields}
}
