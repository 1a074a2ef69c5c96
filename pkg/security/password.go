package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"profile-auth/pkg/apperror"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	bcryptMaxPasswordBytes = 72
	argon2Version          = argon2.Version
)

// PasswordHasher turns plaintext passwords into self-describing salted hashes
// and checks plaintext candidates against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

type HasherConfig struct {
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Params
}

var DefaultArgon2Params = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

type passwordHasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2Params
}

// NewPasswordHasher builds a hasher that writes new hashes with cfg.Algorithm.
// Verification picks the algorithm from the stored hash, so hashes written
// under another setting keep working.
func NewPasswordHasher(cfg HasherConfig) (PasswordHasher, error) {
	h := &passwordHasher{
		algorithm:  cfg.Algorithm,
		bcryptCost: cfg.BcryptCost,
		argon:      cfg.Argon2,
	}

	if h.algorithm == "" {
		h.algorithm = AlgorithmBcrypt
	}
	if h.bcryptCost == 0 {
		h.bcryptCost = bcrypt.DefaultCost
	}
	if h.argon == (Argon2Params{}) {
		h.argon = DefaultArgon2Params
	}
	if h.argon.KeyLen == 0 {
		h.argon.KeyLen = DefaultArgon2Params.KeyLen
	}
	if h.argon.SaltLen == 0 {
		h.argon.SaltLen = DefaultArgon2Params.SaltLen
	}

	switch h.algorithm {
	case AlgorithmBcrypt:
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", h.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
		if h.argon.Time == 0 || h.argon.Memory == 0 || h.argon.Threads == 0 {
			return nil, errors.New("argon2id time, memory and threads must be positive")
		}
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", h.algorithm)
	}

	return h, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", apperror.ErrInvalidInput.WithMessage("password must not be empty")
	}

	if h.algorithm == AlgorithmArgon2id {
		return h.hashArgon2(password)
	}

	if len(password) > bcryptMaxPasswordBytes {
		return "", apperror.ErrInvalidInput.WithMessage("password must be at most 72 bytes")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

func (h *passwordHasher) Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"),
		strings.HasPrefix(encoded, "$2b$"),
		strings.HasPrefix(encoded, "$2y$"):
		return verifyBcrypt(password, encoded)
	default:
		return false, apperror.ErrCorruptHash
	}
}

func verifyBcrypt(password, encoded string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(encoded)); err != nil {
		return false, fmt.Errorf("%w: %v", apperror.ErrCorruptHash, err)
	}
	if password == "" || len(password) > bcryptMaxPasswordBytes {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", apperror.ErrCorruptHash, err)
	}
}

// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func (h *passwordHasher) hashArgon2(password string) (string, error) {
	salt := make([]byte, h.argon.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.argon.Time, h.argon.Memory, h.argon.Threads, h.argon.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, h.argon.Memory, h.argon.Time, h.argon.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false, apperror.ErrCorruptHash
	}

	if parts[2] != "v="+strconv.Itoa(argon2Version) {
		return false, apperror.ErrCorruptHash
	}

	var params Argon2Params
	for _, kv := range strings.Split(parts[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return false, apperror.ErrCorruptHash
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return false, apperror.ErrCorruptHash
		}
		switch name {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			if n > 255 {
				return false, apperror.ErrCorruptHash
			}
			params.Threads = uint8(n)
		default:
			return false, apperror.ErrCorruptHash
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 {
		return false, apperror.ErrCorruptHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, apperror.ErrCorruptHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, apperror.ErrCorruptHash
	}

	if password == "" {
		return false, nil
	}

	got := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
