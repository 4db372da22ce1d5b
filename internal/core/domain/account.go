package domain

import (
	"errors"
	"time"
)

// BootstrapUsername is the reserved handle provisioned with the admin flag at
// startup. A signup using this exact handle also receives the admin flag.
const BootstrapUsername = "FOTFAdminDev"

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// Account models a registered user. PasswordHash holds the bcrypt digest of
// the account's secret; the plaintext is never stored or logged.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
