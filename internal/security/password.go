package security

import "golang.org/x/crypto/bcrypt"

// Work factor for new hashes. Set once at process start via Init and
// immutable afterwards; existing hashes carry their own cost.
var hashCost = bcrypt.DefaultCost

// Init pins the process-wide bcrypt cost. Out-of-range values fall back
// to the bcrypt default.
func Init(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashCost = cost
}

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
