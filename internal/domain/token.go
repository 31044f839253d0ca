package domain

// AccessToken is what the token endpoint returns: a short-lived signed JWT.
// There is no refresh token; clients re-run the login ceremony when it
// expires.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "Bearer"
	ExpiresIn   int64  `json:"expires_in"` // seconds until expiry
}
