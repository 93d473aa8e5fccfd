package domain

import "errors"

// Sentinel errors shared by the matching engine and its adapters.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidEvent        = errors.New("invalid event")
	ErrInvalidEventDate    = errors.New("invalid event date")
	ErrRegistryUnavailable = errors.New("registry unavailable")
	ErrSweepInProgress     = errors.New("reminder sweep already in progress")
)
