package entity

// Credential is a statically configured login. It is never persisted by the store.
type Credential struct {
	Username     string
	DisplayName  string
	PasswordHash string
}
