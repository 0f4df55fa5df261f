package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPaused             = errors.New("market is paused")
	ErrStaleOrWrongRound  = errors.New("stale or wrong round")
	ErrDuplicateBet       = errors.New("bet already placed for this round")
	ErrNothingToClaim     = errors.New("nothing to claim")
	ErrBadRatioSum        = errors.New("the sum of wallet ratios is not equal to 1")
	ErrNotFound           = errors.New("not found")
	ErrOverflow           = errors.New("arithmetic overflow")
	ErrBelowMinimum       = errors.New("bet below minimum")
	ErrInvalidConfig      = errors.New("invalid market config")
	ErrAlreadyInitialized = errors.New("market already initialized")
)
