package domain

// Identity is a directory-resolved staff identity. It is rebuilt from the
// directory on each request and never persisted.
type Identity struct {
	Username    string
	DisplayName string
	Email       *string
	Department  *string
}
