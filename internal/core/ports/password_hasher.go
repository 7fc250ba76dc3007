package ports

// PasswordHasher is the one-way credential hashing leaf. Hash output is
// salted and non-invertible; Verify compares in constant time.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
