// Package auth provides the credential hasher and the signed session cookie.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
)

const (
	argon2SaltLen    = 16
	argon2KeyLen     = 32
	minArgon2SaltLen = 8
)

// Upper bounds on argon2id costs, enforced on configured parameters and on
// stored digests before any key derivation runs. Memory is in KiB (4 GiB).
const (
	MaxArgon2MemoryKiB  = 4 * 1024 * 1024
	MaxArgon2Iterations = 1024
)

// Argon2Params are the argon2id cost parameters. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params follows the OWASP recommendation for argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted digest of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches digest. Malformed digests
	// verify as false.
	Verify(digest, plaintext string) bool

	// NeedsUpgrade reports whether digest should be replaced by a fresh Hash.
	NeedsUpgrade(digest string) bool
}

// Argon2idHasher implements PasswordHasher with argon2id digests in PHC
// string format. bcrypt digests are still accepted by Verify.
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates a hasher using params.
func NewArgon2idHasher(params Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

// Hash produces $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
func (h *Argon2idHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", oops.Code(apperr.CodeHashingFailed).Errorf("password cannot be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code(apperr.CodeHashingFailed).With("operation", "generate salt").Wrap(err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks plaintext against an argon2id or bcrypt digest.
func (h *Argon2idHasher) Verify(digest, plaintext string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}

	d, err := decodeArgon2id(digest)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), d.salt, d.params.Iterations, d.params.Memory, d.params.Parallelism, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(computed, d.key) == 1
}

// NeedsUpgrade is true for bcrypt digests, unparseable digests and argon2id
// digests weaker than the configured parameters.
func (h *Argon2idHasher) NeedsUpgrade(digest string) bool {
	d, err := decodeArgon2id(digest)
	if err != nil {
		return true
	}
	return d.params.Memory < h.params.Memory ||
		d.params.Iterations < h.params.Iterations ||
		d.params.Parallelism < h.params.Parallelism
}

type argon2idDigest struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func decodeArgon2id(digest string) (*argon2idDigest, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid digest format")
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var memory, iterations, parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if parallelism == 0 || parallelism > 255 || iterations == 0 || memory == 0 {
		return nil, fmt.Errorf("parameters out of range")
	}
	if memory > MaxArgon2MemoryKiB || iterations > MaxArgon2Iterations {
		return nil, fmt.Errorf("parameters exceed limits (m=%d, t=%d)", memory, iterations)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	if len(salt) < minArgon2SaltLen {
		return nil, fmt.Errorf("salt too short (%d bytes)", len(salt))
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if len(key) == 0 || len(key) > 1024 {
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}

	return &argon2idDigest{
		params: Argon2Params{Memory: memory, Iterations: iterations, Parallelism: uint8(parallelism)},
		salt:   salt,
		key:    key,
	}, nil
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}
