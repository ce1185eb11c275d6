package constants

import "time"

// Authentication policy defaults. Runtime values come from config; these are
// the fallbacks and the values the tests pin down.
const (
	// BcryptCost is the work factor for password hashes. Deliberately above
	// the library default to slow offline brute force.
	BcryptCost = 12

	// RefreshTokenBytes is the entropy of the opaque refresh token before
	// hex encoding.
	RefreshTokenBytes = 32

	// VerificationTokenBytes is the entropy of the email-verification token.
	VerificationTokenBytes = 32

	DefaultMaxSessions      = 3
	DefaultMaxLoginAttempts = 5
	DefaultLockoutDuration  = 30 * time.Minute
	DefaultVerificationTTL  = 24 * time.Hour

	// DefaultAccessExpirySeconds is the fail-safe when the configured
	// duration string cannot be parsed.
	DefaultAccessExpirySeconds = 3600
)
