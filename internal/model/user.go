package model

import (
	"encoding/json"
	"strings"
)

// Role is the access level of a dashboard user
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// AllRoles returns every known role, the "any authenticated user" allow-list
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin}
}

// ParseRole matches s against the known role names, ignoring case
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles() {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// User represents a Meganote account as returned by the backend
type User struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	Fullname  string `json:"fullname,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// UserPage is one page of the paginated /users listing
type UserPage struct {
	Users      []User `json:"users"`
	Count      int    `json:"count"`
	TotalPages int    `json:"totalPages"`
}

// UserInput is the body of user create and update requests
type UserInput struct {
	Username string `json:"username" binding:"required"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Active   *bool  `json:"active,omitempty"`
}

// AccountInput is the body of the self-service settings update
type AccountInput struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// ProfileInput is the body of the self-service profile update
type ProfileInput struct {
	ID        string `json:"id"`
	Fullname  string `json:"fullname"`
	AvatarURL string `json:"avatarUrl"`
}
