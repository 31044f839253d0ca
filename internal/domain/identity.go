package domain

import "time"

// Identity is a registered user. The password hash and TOTP secret are set
// once at registration; no operation updates or rotates them.
type Identity struct {
	ID           string
	Username     string
	PasswordHash string // argon2id, PHC encoded
	TOTPSecret   string // base32 encoded shared secret
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
