// ABOUTME: User identity and credential models for the FormationsGest API
// ABOUTME: Defines roles, profiles and login request/response contracts

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the access role carried by a user profile
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAssistant Role = "ASSISTANT"
	RoleFormateur Role = "FORMATEUR"
)

// Roles lists every known role in privilege order
var Roles = []Role{RoleAdmin, RoleAssistant, RoleFormateur}

// ParseRole normalizes a role string. Unknown roles return an error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAssistant, RoleFormateur:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// UserProfile is the authenticated identity returned by /auth/me
type UserProfile struct {
	ID     string `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// UnmarshalJSON accepts either "id" or Mongo's "_id"
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type alias UserProfile
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = UserProfile(raw.alias)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	return nil
}

// FullName returns "Prenom Nom", trimmed when either is missing
func (u *UserProfile) FullName() string {
	return strings.TrimSpace(u.Prenom + " " + u.Nom)
}

// Credentials are sent once to /auth/login and never persisted
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the body of a successful /auth/login
type LoginResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ProfileUpdate carries editable fields for PUT /auth/me
type ProfileUpdate struct {
	Nom       string `json:"nom,omitempty"`
	Prenom    string `json:"prenom,omitempty"`
	Email     string `json:"email,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

// PasswordChange is the body of PUT /auth/password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PasswordReset is the body of POST /auth/reset-password
type PasswordReset struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// User is an account as managed through /auth/users
type User struct {
	UserProfile
	Telephone string `json:"telephone,omitempty"`
	Actif     bool   `json:"actif"`
	Password  string `json:"password,omitempty"`
}

// UnmarshalJSON keeps the embedded profile's id handling
func (u *User) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &u.UserProfile); err != nil {
		return err
	}
	var extra struct {
		Telephone string `json:"telephone"`
		Actif     bool   `json:"actif"`
		Password  string `json:"password"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	u.Telephone = extra.Telephone
	u.Actif = extra.Actif
	u.Password = extra.Password
	return nil
}
