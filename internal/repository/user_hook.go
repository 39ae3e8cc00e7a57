package repository

import (
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
)

// PrepareUserWrite runs before every user write. New records and records whose
// password was set since the last write get the plaintext replaced by a
// digest; anything else is left alone so a stored digest is never hashed
// twice. It reports whether the password column must be written.
func PrepareUserWrite(hasher auth.PasswordHasher, user *domain.User, isNew bool) (bool, error) {
	if !isNew && !user.PasswordChanged() {
		return false, nil
	}

	digest, err := hasher.Hash(user.Password)
	if err != nil {
		return false, err
	}

	user.Password = digest
	user.MarkPasswordStored()
	return true, nil
}
