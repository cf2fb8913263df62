package domain

import (
	"encoding/json"
	"fmt"
)

// Role defines which console dashboard the user lands on
type Role string

const (
	RoleAdmin   Role = "admin"   // Manage users, categories, access grants
	RoleExpert  Role = "expert"  // Review documents and access requests
	RoleCompany Role = "company" // Company user, uploads documents
)

// User is the profile returned by the backend on login.
// Only id, name, email and role are interpreted; every other field is kept
// in Profile and round-trips untouched.
type User struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Role    Role           `json:"role"`
	Profile map[string]any `json:"-"`
}

var knownUserFields = map[string]struct{}{
	"id":    {},
	"name":  {},
	"email": {},
	"role":  {},
}

// MarshalJSON flattens Profile next to the known fields
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Profile)+4)
	for k, v := range u.Profile {
		if _, known := knownUserFields[k]; known {
			continue
		}
		out[k] = v
	}
	out["id"] = u.ID
	out["name"] = u.Name
	out["email"] = u.Email
	out["role"] = u.Role
	return json.Marshal(out)
}

// UnmarshalJSON accepts numeric or string ids and keeps unknown fields in Profile
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User{}
	u.ID = stringField(raw["id"])
	if u.ID == "" {
		u.ID = stringField(raw["_id"])
	}
	u.Name = stringField(raw["name"])
	u.Email = stringField(raw["email"])
	u.Role = Role(stringField(raw["role"]))

	for k, v := range raw {
		if _, known := knownUserFields[k]; known {
			continue
		}
		if u.Profile == nil {
			u.Profile = make(map[string]any)
		}
		u.Profile[k] = v
	}
	return nil
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DashboardPath returns the landing route for the user's role
func (u *User) DashboardPath() string {
	switch u.Role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleExpert:
		return "/expert/dashboard"
	default:
		return "/user/dashboard"
	}
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
