package services

import "errors"

// Data service errors
var (
	// Dataset errors
	ErrNoActivePath = errors.New("no active dataset path")

	// Smoother errors
	ErrUnknownSmoother = errors.New("unknown smoother")
)
