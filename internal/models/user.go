package models

// UserStatus is the directory account state.
type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
)

// DirectoryUser is a user account as seen through the directory service.
// Username is the directory key: assigned server-side, unique, never mutated
// by this backend.
type DirectoryUser struct {
	Username          string     `json:"username"`
	Email             string     `json:"email,omitempty"`
	DisplayName       string     `json:"displayName"`
	Status            UserStatus `json:"status"`
	Groups            []string   `json:"groups"`
	CreatedAt         string     `json:"createdAt,omitempty"`
	PasswordLastSet   string     `json:"passwordLastSet,omitempty"`
	PasswordExpiresAt string     `json:"passwordExpiresAt,omitempty"`
	AccountExpiresAt  string     `json:"accountExpiresAt,omitempty"`
}

// IsBlocked reports whether the account is disabled in the directory.
func (u *DirectoryUser) IsBlocked() bool {
	return u.Status == StatusBlocked
}

// CreateUserRequest is the body for creating a directory user. It is
// write-only and ephemeral: the password must not be retained after the
// creation call, and the struct is never persisted.
type CreateUserRequest struct {
	DisplayName string   `json:"displayName"`
	Password    string   `json:"password"`
	Groups      []string `json:"groups,omitempty"`
}

// UpdateUserRequest carries the mutable fields of a directory user.
// Username is deliberately absent: the directory key is immutable.
type UpdateUserRequest struct {
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Group is a directory group with its member count.
type Group struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}
