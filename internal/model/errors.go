package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrLastAdmin      = errors.New("cannot revoke the last remaining admin")
	ErrInvalidRole    = errors.New("invalid role")

	// Game errors
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidGame  = errors.New("invalid game definition")

	// Pick errors
	ErrAlreadySubmitted = errors.New("picks already submitted")
	ErrInvalidChoice    = errors.New("chosen winner is not one of the game's teams")
	// ErrPickExists is the storage-level signal that a conflicting pick
	// won the insert race; the ledger surfaces it as ErrAlreadySubmitted.
	ErrPickExists = errors.New("conflicting pick exists")
)
