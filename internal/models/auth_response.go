package models

import "mindcare-be/internal/entities"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// UserView is the public projection of an account. The password hash is
// deliberately absent.
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserView strips everything but the public fields from an account
func NewUserView(account *entities.Account) *UserView {
	return &UserView{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	}
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Status string    `json:"status"`
	User   *UserView `json:"user"`
	Token  string    `json:"token"`
}

// MeResponse is returned by GET /me
type MeResponse struct {
	Status string    `json:"status"`
	User   *UserView `json:"user"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewErrorResponse builds an error body with the given client-facing message
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: message}
}
