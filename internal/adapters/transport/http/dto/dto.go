package dto

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
)

type RegisterDTO struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountDTO never carries the password digest.
type AccountDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type LoginResponseDTO struct {
	AccountDTO
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type UsersDTO struct {
	Users []AccountDTO `json:"users"`
}

type ErrorDTO struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

func FromAccount(a model.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func FromSession(s model.Session) LoginResponseDTO {
	return LoginResponseDTO{
		AccountDTO: FromAccount(s.Account),
		Token:      s.Token,
		ExpiresAt:  s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func FromAccounts(accounts []model.Account) UsersDTO {
	out := UsersDTO{Users: make([]AccountDTO, 0, len(accounts))}
	for _, a := range accounts {
		out.Users = append(out.Users, FromAccount(a))
	}
	return out
}
