package domain

import "time"

// Issuer is a directory account permitted to issue statements for a branch.
type Issuer struct {
	ID        string
	Name      string
	BranchID  string
	Active    bool
	CreatedAt time.Time
}
