package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // argon2 encoded
	IsAdmin      bool

	// Active is false until the registration OTP has been verified.
	Active bool

	// OTPSecret is the base32 TOTP secret issued at registration. It is
	// cleared once the account is verified.
	OTPSecret string
	OTPExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID        string
	UserID    int64
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is what a successful login or refresh hands to the HTTP layer.
// The refresh token is only ever written into a cookie.
type Session struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
	User         User
}
