package auth

// User is a credential record for the token endpoint. PasswordHash is a
// bcrypt hash; plaintext passwords never leave the transport layer.
type User struct {
	Username     string
	PasswordHash string
}

// TokenResult is the OAuth2-style response returned on a successful login.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
