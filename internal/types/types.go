package types

const ContextUserKey = "user"

// AuthenticatedUser is what the auth middleware places in the request
// context after resolving the token.
type AuthenticatedUser struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleName  string `json:"role"`
}

func (u AuthenticatedUser) IsAdmin() bool {
	return u.RoleName == "Admin"
}
