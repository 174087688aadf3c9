package models

import "time"

// AdminAccount is an operator account for the admin API.
type AdminAccount struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// AdminActionRequest is the body for award/penalize calls.
type AdminActionRequest struct {
	GuildID     string   `json:"guild_id"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	RoleIDs     []string `json:"role_ids,omitempty"`
	Amount      int      `json:"amount"`
	ActorUserID string   `json:"actor_user_id,omitempty"`
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

func (r *AdminActionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.GuildID == "" {
		errors["guild_id"] = "Guild ID is required"
	}
	if r.UserID == "" {
		errors["user_id"] = "User ID is required"
	}
	if r.Amount <= 0 {
		errors["amount"] = "Amount must be positive"
	}

	return errors
}
