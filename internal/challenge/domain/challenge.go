package domain

import "time"

// Purpose identifies which flow a one-time code belongs to. The set is closed;
// a code issued for one purpose never verifies another.
type Purpose string

const (
	PurposeSignup         Purpose = "signup"
	PurposeSignin         Purpose = "signin"
	PurposeForgot         Purpose = "forgot"
	PurposeChangePassword Purpose = "change_password"
)

// Valid reports whether p is one of the four known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSignup, PurposeSignin, PurposeForgot, PurposeChangePassword:
		return true
	}
	return false
}

// Challenge is a one-time code bound to an email and a purpose (stored in the
// otp_challenges table). The code itself is never stored; only its hash is.
// Expiry makes a challenge unusable but does not delete it; deletion happens in
// bulk when any code for the same (email, purpose) verifies successfully.
type Challenge struct {
	ID        string
	Email     string
	CodeHash  string
	Purpose   Purpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge is past its expiry at the given instant.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
