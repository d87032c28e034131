package domain

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Account struct {
	ID           int64
	Email        string
	PasswordHash string
}

// Session identifies the authenticated caller. It is built from a verified
// token and handed to every service call explicitly.
type Session struct {
	AccountID int64
	Email     string
}
