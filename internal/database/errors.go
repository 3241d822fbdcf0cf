package database

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrNotEligible indicates a guarded transition matched zero rows: the
	// entity exists but is not in a state that permits the operation
	ErrNotEligible = errors.New("not eligible for this transition")

	// ErrRequestResolved indicates a therapist request was already
	// approved or rejected by an earlier call
	ErrRequestResolved = errors.New("request already resolved")

	// ErrDuplicateUsername indicates the username is already taken
	ErrDuplicateUsername = errors.New("username already exists")
)
