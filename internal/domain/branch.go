package domain

import "time"

// Branch is a bank branch allowed to register accounts.
type Branch struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}
