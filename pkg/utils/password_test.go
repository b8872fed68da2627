package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastArgon2 = &Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestVerifyPassword(t *testing.T) {
	bcryptHash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	argonHash, err := HashPasswordArgon2("s3cret-pass", fastArgon2)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "bcrypt match", password: "s3cret-pass", hash: bcryptHash, want: true},
		{name: "bcrypt mismatch", password: "wrong", hash: bcryptHash, want: false},
		{name: "argon2id match", password: "s3cret-pass", hash: argonHash, want: true},
		{name: "argon2id mismatch", password: "wrong", hash: argonHash, want: false},
		{name: "plaintext is not a hash", password: "s3cret-pass", hash: "s3cret-pass", wantErr: true},
		{name: "truncated argon2id", password: "s3cret-pass", hash: "$argon2id$v=19$m=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, CheckPasswordHash(tt.password, tt.hash))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, CheckPasswordHash(tt.password, tt.hash))
		})
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPasswordArgon2("same", fastArgon2)
	require.NoError(t, err)
	b, err := HashPasswordArgon2("same", fastArgon2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	c, err := HashPassword("same")
	require.NoError(t, err)
	d, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, c, d)
}
