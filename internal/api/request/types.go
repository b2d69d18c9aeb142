package request

// TokenRequest is the request body for exchanging the admin password for a token
type TokenRequest struct {
	Password string `json:"password"`
}
