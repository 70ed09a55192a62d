// Package validate checks the shape of user-supplied credentials before any
// store access. It never touches I/O.
package validate

import (
	"reflect"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type RegisterInput struct {
	Username        string `json:"username"        validate:"notblank"`
	Email           string `json:"email"           validate:"notblank"`
	Password        string `json:"password"        validate:"notblank"`
	ConfirmPassword string `json:"confirmPassword" validate:"notblank,eqfield=Password"`
}

type LoginInput struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// labels used in "must not be empty" messages
var labels = map[string]string{
	"confirmPassword": "repeat password",
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// ValidateRegistration returns every problem found in in; an empty set means valid.
// The password match is only checked once confirmPassword itself is present.
func (v *Validator) ValidateRegistration(in RegisterInput) customErrors.FieldErrors {
	return v.collect(in)
}

func (v *Validator) ValidateLogin(in LoginInput) customErrors.FieldErrors {
	return v.collect(in)
}

func (v *Validator) collect(in any) customErrors.FieldErrors {
	out := customErrors.FieldErrors{}

	err := v.v.Struct(in)
	if err == nil {
		return out
	}

	// ValidateRegistration/ValidateLogin always pass a struct, so err is ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	switch tag {
	case "notblank":
		label, ok := labels[field]
		if !ok {
			label = field
		}
		return label + " must not be empty"
	case "eqfield":
		return "passwords must match"
	default:
		return field + " is invalid"
	}
}
