package hasher

// PasswordHasher derives and checks password digests. Verify never fails:
// any mismatch, including a malformed digest, is reported as false.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}
