package dto

import "time"

// SendOTPRequest payload.
type SendOTPRequest struct {
	Phone string `json:"phone"`
}

// VerifyOTPRequest payload.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse carries an issued access token.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyOTPResponse combines the member identity with the session.
type VerifyOTPResponse struct {
	MemberID string          `json:"member_id"`
	Phone    string          `json:"phone"`
	Session  SessionResponse `json:"session"`
}
