// Package service defines the ports to stateless domain services and external adapters.
package service

// PasswordHasher hashes and checks passwords without exposing the algorithm.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool
}
