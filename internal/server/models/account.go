package models

import "time"

// Account is the stored identity record. PasswordHash never leaves the server.
type Account struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
}

// PublicUser is an Account without its secret hash. It is what the API
// returns and what authenticated handlers see.
type PublicUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// Public projects the account into its public form.
func (a *Account) Public() *PublicUser {
	return &PublicUser{
		ID:        a.ID,
		Email:     a.Email,
		Username:  a.UserName,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}
