package domain

import (
	"context"
	"time"
)

// User roles.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDeveloper      = "developer"
	RoleTester         = "tester"
	RoleUser           = "user"
)

// User represents a registered account.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`    // unique
	Username     string      `json:"username"` // unique
	PasswordHash string      `json:"-"`        // bcrypt, never serialized
	DisplayName  string      `json:"displayName,omitempty"`
	Avatar       string      `json:"avatar,omitempty"`
	JobTitle     string      `json:"jobTitle,omitempty"`
	Department   string      `json:"department,omitempty"`
	Location     string      `json:"location,omitempty"`
	Timezone     string      `json:"timezone"`
	Language     string      `json:"language"`
	PhoneNumber  string      `json:"phoneNumber,omitempty"`
	Role         string      `json:"role"`
	IsActive     bool        `json:"isActive"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	Preferences  Preferences `json:"preferences"`
	Grants       []Grant     `json:"permissions"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Preferences holds per-user UI settings.
type Preferences struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"emailNotifications"`
	InAppNotifications bool   `json:"inAppNotifications"`
	DashboardLayout    string `json:"dashboardLayout"`
}

// DefaultPreferences returns the preferences applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              "light",
		EmailNotifications: true,
		InAppNotifications: true,
		DashboardLayout:    "default",
	}
}

// Grant pairs a resource with the actions a user may perform on it.
type Grant struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// HasPermission reports whether the user holds a grant for the given
// resource and action.
func (u *User) HasPermission(resource, action string) bool {
	for _, g := range u.Grants {
		if g.Resource != resource {
			continue
		}
		for _, a := range g.Actions {
			if a == action {
				return true
			}
		}
	}
	return false
}

// UserRef is the reduced identity shape embedded in expanded responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the user's reduced identity.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	Update(ctx context.Context, user *User) error
}
