package models

import "time"

// User represents a user in the system. Records are owned by the external
// identity provider and kept in sync via webhook events; token_identifier is
// the provider's stable identity token.
type User struct {
	ID              string    `json:"id" db:"id"`
	TokenIdentifier string    `json:"-" db:"token_identifier"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	Image           string    `json:"image,omitempty" db:"image"`
	IsOnline        bool      `json:"isOnline" db:"is_online"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// UserResponse is what we send to clients (without the identity token)
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	IsOnline  bool      `json:"isOnline"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		IsOnline:  u.IsOnline,
		CreatedAt: u.CreatedAt,
	}
}
