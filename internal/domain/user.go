package domain

type ContextKey string

const UserContextKey ContextKey = "user"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is the identity carried by an access token. Accounts and sessions are
// managed by the auth service; this backend only reads the claims.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
