package domain

import "errors"

var (
	UnexpectedDatabaseError = errors.New("database-error")
	ErrDuplicateUsername    = errors.New("duplicate-username")
	ErrUserNotFound         = errors.New("user-not-found")
	ErrInsufficientFunds    = errors.New("insufficient-funds")
)

var (
	UnexpectedPasswordHashingError        = errors.New("hashing-error")
	UnexpectedPasswordHashComparisonError = errors.New("hash-comparison-error")
)

var (
	UnexpectedTokenGenerationError   = errors.New("token-generation-error")
	UnexpectedTokenVerificationError = errors.New("token-verification-error")
	ErrInvalidSigningAlg             = errors.New("invalid-signing-alg")
	ErrExpiredToken                  = errors.New("expired-token")
	ErrInvalidTokenSignature         = errors.New("invalid-token-signature")
	ErrCorruptedToken                = errors.New("corrupted-token")
)
