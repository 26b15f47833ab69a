package models

import "time"

type User struct {
	ID                int64      `db:"id"`
	Username          string     `db:"username"`
	Email             string     `db:"email"`
	PasswordHash      string     `db:"password_hash"`
	ResetToken        *string    `db:"reset_token"`
	ResetTokenExpires *time.Time `db:"reset_token_expires"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// DisplayName is the name shown to the user: the local part of the email
// address, falling back to the username when the email is empty.
func (u *User) DisplayName() string {
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Username
}
