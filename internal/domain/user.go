package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Password holds the argon2id digest once the
// record has been written; it is never rendered to JSON.
type User struct {
	ID           uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"Username" gorm:"uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	EmailAddress string    `json:"EmailAddress" gorm:"not null"`
	CreatedAt    time.Time `json:"CreatedAt"`
	UpdatedAt    time.Time `json:"UpdatedAt"`

	passwordChanged bool
}

// NewUser builds an unsaved user carrying a plaintext password. The store
// replaces it with a digest on write.
func NewUser(username, password, emailAddress string) *User {
	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		EmailAddress: emailAddress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.SetPassword(password)
	return u
}

// SetPassword stores a new plaintext password and marks it for hashing on the
// next write.
func (u *User) SetPassword(plaintext string) {
	u.Password = plaintext
	u.passwordChanged = true
}

// PasswordChanged reports whether SetPassword was called since the last write.
func (u *User) PasswordChanged() bool {
	return u.passwordChanged
}

// MarkPasswordStored clears the pending-password flag after the digest has
// replaced the plaintext.
func (u *User) MarkPasswordStored() {
	u.passwordChanged = false
}
