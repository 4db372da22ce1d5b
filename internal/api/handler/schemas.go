package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginRequest carries no validate tags: a blank field must fail with the
// same generic 401 as wrong credentials, not a descriptive 400.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// accountSummary is the client-facing account shape. It never carries the
// password hash.
type accountSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  accountSummary `json:"user"`
}

// --- Products ---

type createProductRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"       validate:"required,gt=0"`
	Features    []string `json:"features"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Subscriptions ---

type createSubscriptionRequest struct {
	ProductID       string `json:"product_id"       validate:"required"`
	DiscordUsername string `json:"discord_username" validate:"required"`
}

type subscriptionResponse struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	ProductID          string           `json:"product_id"`
	Product            *productResponse `json:"product,omitempty"`
	User               *accountSummary  `json:"user,omitempty"`
	DiscordUsername    string           `json:"discord_username"`
	Status             string           `json:"status"`
	CurrentPeriodStart time.Time        `json:"current_period_start"`
	CurrentPeriodEnd   time.Time        `json:"current_period_end"`
	CancelAtPeriodEnd  bool             `json:"cancel_at_period_end"`
	CreatedAt          time.Time        `json:"created_at"`
}
