package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor used by the original seed data, so
// previously stored hashes keep verifying.
const bcryptCost = 10

// HashPassword derives a salted one-way hash of the plaintext password.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// digest. A malformed digest counts as a mismatch, never an error.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
