package types

type RequestToken struct {
	SessionID string `json:"session_id"`
}

type ResponseToken struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}
