package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// werkzeug defaults when the method string omits parameters
const (
	defaultPBKDF2Iterations = 600000
	defaultScryptN          = 1 << 15
	defaultScryptR          = 8
	defaultScryptP          = 1
	scryptKeyLen            = 64
	maxScryptN              = 1 << 20
)

var hashPrefixes = []string{"$2a$", "$2b$", "$2y$", "pbkdf2:", "scrypt:", "argon2:"}

// HashPassword returns a salted bcrypt digest.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// IsHashed reports whether stored carries a recognized hash-algorithm prefix.
func IsHashed(stored string) bool {
	for _, p := range hashPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// VerifyPassword checks plain against stored. Values without a recognized
// prefix are legacy plaintext rows and are compared byte for byte.
func VerifyPassword(stored, plain string) bool {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	case strings.HasPrefix(stored, "pbkdf2:"):
		return verifyPBKDF2(stored, plain)
	case strings.HasPrefix(stored, "scrypt:"):
		return verifyScrypt(stored, plain)
	case strings.HasPrefix(stored, "argon2:"):
		// 接頭辞は認識するが、検証できる werkzeug の argon2 形式は無い
		return false
	default:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	}
}

// splitWerkzeug splits "method$salt$hexdigest".
func splitWerkzeug(stored string) (method, salt string, digest []byte, ok bool) {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 || parts[1] == "" {
		return "", "", nil, false
	}
	d, err := hex.DecodeString(parts[2])
	if err != nil || len(d) == 0 {
		return "", "", nil, false
	}
	return parts[0], parts[1], d, true
}

// pbkdf2:<digest>[:<iterations>]$salt$hex
func verifyPBKDF2(stored, plain string) bool {
	method, salt, want, ok := splitWerkzeug(stored)
	if !ok {
		return false
	}
	params := strings.Split(method, ":")
	if len(params) < 2 || len(params) > 3 {
		return false
	}
	var newHash func() hash.Hash
	switch params[1] {
	case "sha1":
		newHash = sha1.New
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return false
	}
	iter := defaultPBKDF2Iterations
	if len(params) == 3 {
		n, err := strconv.Atoi(params[2])
		if err != nil || n <= 0 {
			return false
		}
		iter = n
	}
	if len(want) != newHash().Size() {
		return false
	}
	got := pbkdf2.Key([]byte(plain), []byte(salt), iter, len(want), newHash)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// scrypt[:N:r:p]$salt$hex
func verifyScrypt(stored, plain string) bool {
	method, salt, want, ok := splitWerkzeug(stored)
	if !ok || len(want) != scryptKeyLen {
		return false
	}
	n, r, p := defaultScryptN, defaultScryptR, defaultScryptP
	params := strings.Split(method, ":")
	switch len(params) {
	case 1:
	case 4:
		var err error
		if n, err = strconv.Atoi(params[1]); err != nil {
			return false
		}
		if r, err = strconv.Atoi(params[2]); err != nil {
			return false
		}
		if p, err = strconv.Atoi(params[3]); err != nil {
			return false
		}
	default:
		return false
	}
	if n <= 1 || n > maxScryptN || r <= 0 || p <= 0 {
		return false
	}
	got, err := scrypt.Key([]byte(plain), []byte(salt), n, r, p, scryptKeyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}
