package models

import "time"

// PendingOTP is the single-slot demo one-time code. Any new request
// overwrites it; it is not a queue.
type PendingOTP struct {
	Phone   string `json:"phone"`
	Code    string `json:"code"`
	Expires int64  `json:"expires"` // epoch milliseconds
}

// ExpiredAt reports whether the code has passed its absolute expiry.
func (p *PendingOTP) ExpiredAt(now time.Time) bool {
	if p == nil {
		return true
	}
	return now.UnixMilli() > p.Expires
}

// LoginRequest is the email+password credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
