package domain

import "time"

// LoginChallenge is the intermediate proof that a password check succeeded.
// The opaque token handed to the client is never stored; only its SHA-256
// fingerprint is. A challenge is time-bounded, bound to one user, counts its
// failed second-factor attempts, and is consumed by token issuance.
type LoginChallenge struct {
	ID        string
	UserID    string
	TokenHash string // fingerprint of the opaque challenge token
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LoginChallengeResponse is returned by a successful password check. The
// client must present Token to the second-factor and token endpoints.
type LoginChallengeResponse struct {
	MFARequired bool     `json:"mfa_required"` // always true
	Token       string   `json:"login_token"`
	ExpiresIn   int64    `json:"expires_in"` // seconds
	Methods     []string `json:"methods"`    // e.g. ["totp"]
}

// EnrollmentResponse carries what a client needs to register the shared
// secret in an authenticator app.
type EnrollmentResponse struct {
	ProvisioningURI string `json:"provisioning_uri"`
	Issuer          string `json:"issuer"`
	Account         string `json:"account"`
}
