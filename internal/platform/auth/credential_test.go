package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// digests produced by werkzeug.security.generate_password_hash("p1", ...)
const (
	pbkdf2SHA256 = "pbkdf2:sha256:600000$AbCdEfGh12345678$bb58f104c5b1227f29480735121e0de7dd2d94145423533d9f3797135bd7ff6d"
	pbkdf2SHA1   = "pbkdf2:sha1:1000$AbCdEfGh12345678$3d022caa5bc2965cc1ae7bc209cb20678104e2e0"
	scryptSmall  = "scrypt:1024:8:1$AbCdEfGh12345678$a86b9a97a519bf609864915ae54a212baff2ebfc2698e801e789c7ae05883c6ccbbd685bc9f50c2f986843e68967dca9212489820c55fc0925ea0d67b979e942"
	scryptDef    = "scrypt:32768:8:1$AbCdEfGh12345678$2053d8235ce216fb6bee76c8e4b145fa67d271df74909607337797d39663075d37e397c5ad4e9edd22bc921d03a5f2b8332f894e27d751431d1afe371b57d283"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2a$"))
	assert.True(t, IsHashed(h))
	assert.True(t, VerifyPassword(h, "s3cret"))
	assert.False(t, VerifyPassword(h, "S3cret"))

	h2, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salted hashes must differ")
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyPassword(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		plain  string
		want   bool
	}{
		{"pbkdf2 sha256", pbkdf2SHA256, "p1", true},
		{"pbkdf2 sha256 wrong", pbkdf2SHA256, "p2", false},
		{"pbkdf2 sha1", pbkdf2SHA1, "p1", true},
		{"scrypt small", scryptSmall, "p1", true},
		{"scrypt small wrong", scryptSmall, "P1", false},
		{"scrypt default", scryptDef, "p1", true},
		{"pbkdf2 unknown digest", "pbkdf2:md5:1000$salt$00", "p1", false},
		{"pbkdf2 truncated", "pbkdf2:sha256:1000$salt", "p1", false},
		{"pbkdf2 bad hex", "pbkdf2:sha256:1000$salt$zz", "p1", false},
		{"scrypt absurd cost", "scrypt:1073741824:8:1$salt$00", "p1", false},
		{"argon2 never verifies", "argon2:$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA", "p1", false},
		{"plaintext legacy", "p1", "p1", true},
		{"plaintext mismatch", "p1", "p10", false},
		{"plaintext empty stored", "", "p1", false},
		{"plaintext empty both", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.stored, tt.plain))
		})
	}
}

func TestIsHashed(t *testing.T) {
	assert.True(t, IsHashed(pbkdf2SHA1))
	assert.True(t, IsHashed(scryptDef))
	assert.True(t, IsHashed("argon2:whatever"))
	assert.False(t, IsHashed("hunter2"))
}
