package domain

import "errors"

var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInvalidTimeframe   = errors.New("invalid timeframe")
	ErrInvalidView        = errors.New("invalid view mode")
	ErrInvalidDimensions  = errors.New("grid dimensions must be positive")
	ErrSimulatedOutage    = errors.New("liquidation feed unavailable")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidField       = errors.New("invalid field")
	ErrInvalidToken       = errors.New("invalid session token")
)
