package models

import "errors"

var (
	// ErrInvalidInput indicates a non-positive price, strike, time to
	// expiration or volatility at a call boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence indicates the implied-volatility solver exhausted
	// its iteration budget without meeting the error tolerance.
	ErrNoConvergence = errors.New("implied volatility did not converge")

	// ErrInsufficientShares indicates an attempt to sell more contracts
	// than the owned share count covers.
	ErrInsufficientShares = errors.New("insufficient shares for contracts")

	// ErrIllegalTransition indicates a position lifecycle transition that
	// is not permitted from the current state.
	ErrIllegalTransition = errors.New("illegal position state transition")

	// ErrDataGap indicates a historical series too sparse to simulate.
	ErrDataGap = errors.New("historical series has insufficient data")

	// ErrPositionNotFound indicates an unknown position id.
	ErrPositionNotFound = errors.New("position not found")
)
