package domain

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Picture           string   `json:"picture,omitempty"`
	Role              UserRole `json:"role"`
	IsVerified        bool     `json:"isVerified"`
	VerificationToken *string  `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// GoogleIdentity is the verified payload of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Name          string
	Email         string
	Picture       string
	EmailVerified bool
}
