package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "credentials.yaml", `
users:
  - username: alice
    name: Alice Example
    password_hash: "$2a$10$abcdefghijklmnopqrstuv"
  - username: bob
    password_hash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
`)

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	assert.Equal(t, "alice", creds[0].Username)
	assert.Equal(t, "Alice Example", creds[0].DisplayName)
	assert.Equal(t, "bob", creds[1].DisplayName, "display name falls back to username")
}

func TestLoadCredentials_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing hash", "users:\n  - username: alice\n"},
		{"duplicate username", "users:\n  - username: a\n    password_hash: x\n  - username: a\n    password_hash: y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(writeFile(t, "credentials.yaml", tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", Name: "inv", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=inv port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
