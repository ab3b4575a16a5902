package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing schemes.
const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

// Argon2id parameters (OWASP baseline: 19 MiB, 2 passes, 1 lane).
const (
	argonMemory      uint32 = 19 * 1024
	argonIterations  uint32 = 2
	argonParallelism uint8  = 1
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

const argonPrefix = "$argon2id$"

// HashFormatError reports a stored hash that cannot be parsed.
type HashFormatError struct {
	Reason string
	Err    error
}

func (e *HashFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid password hash: %s: %v", e.Reason, e.Err)
	}
	return "invalid password hash: " + e.Reason
}

func (e *HashFormatError) Unwrap() error { return e.Err }

// PasswordHasher hashes new passwords with the configured scheme and
// verifies hashes of any supported scheme.
type PasswordHasher struct {
	scheme     string
	bcryptCost int
}

// NewPasswordHasher creates a hasher for scheme. bcryptCost is only used by
// the bcrypt scheme; zero selects bcrypt.DefaultCost.
func NewPasswordHasher(scheme string, bcryptCost int) (*PasswordHasher, error) {
	switch scheme {
	case HashBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case HashArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hash scheme %q", scheme)
	}
	return &PasswordHasher{scheme: scheme, bcryptCost: bcryptCost}, nil
}

// Hash returns a self-contained hash of plaintext with a fresh salt.
// bcrypt rejects passwords longer than 72 bytes.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if h.scheme == HashArgon2id {
		return hashArgon2id(plaintext)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
// only an unparsable hash returns an error, always a *HashFormatError.
func (h *PasswordHasher) Verify(plaintext, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, argonPrefix):
		return verifyArgon2id(plaintext, hash)
	case strings.HasPrefix(hash, "$2"):
		return verifyBcrypt(plaintext, hash)
	default:
		return false, &HashFormatError{Reason: "unknown scheme"}
	}
}

func verifyBcrypt(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &HashFormatError{Reason: "bcrypt", Err: err}
	}
}

func hashArgon2id(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix,
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2id parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func verifyArgon2id(plaintext, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, &HashFormatError{Reason: "argon2id: expected 6 parts"}
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, &HashFormatError{Reason: "argon2id: version", Err: err}
	}
	if version != argon2.Version {
		return false, &HashFormatError{Reason: fmt.Sprintf("argon2id: unsupported version %d", version)}
	}

	var (
		memory, iterations uint32
		parallelism        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, &HashFormatError{Reason: "argon2id: parameters", Err: err}
	}
	// argon2.IDKey panics on zero passes or lanes.
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return false, &HashFormatError{Reason: "argon2id: zero parameter"}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, &HashFormatError{Reason: "argon2id: salt", Err: err}
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, &HashFormatError{Reason: "argon2id: key", Err: err}
	}

	computed := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(expected))) // #nosec G115
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
