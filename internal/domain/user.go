package domain

// User is the domain model for end-users who submit tickets.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Token        *string
}
