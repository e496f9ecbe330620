package auth

// AuthenticateRequest represents a token authentication request.
type AuthenticateRequest struct {
	Token string `json:"token"`
}

// AuthenticateResponse represents a token authentication response.
type AuthenticateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}
