package domain

import "time"

// RoleUser is assigned to every account at registration.
const RoleUser = "user"

// User models a registered application account, unique by Email.
type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photoURL"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
