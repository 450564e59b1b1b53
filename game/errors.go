/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"fmt"
)

var (
	ErrNameInvalid         = fmt.Errorf("name must be between %d and %d characters", MinNameLength, MaxNameLength)
	ErrNameDuplicate       = errors.New("name is already taken")
	ErrRosterFull          = fmt.Errorf("roster is full (max %d players)", MaxPlayers)
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInsufficientPlayers = fmt.Errorf("at least %d players are required", MinPlayers)
	ErrSessionActive       = errors.New("a session is already in progress")
	ErrNoActiveSession     = errors.New("no session in progress")
	ErrPolicyInvalid       = errors.New("invalid impostor policy")
	ErrEmptyWordBank       = errors.New("word bank is empty")
)

// StorageError describes a persisted record that could not be read, decoded
// or written. The manager logs these and falls back to default state.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is one of the operator-facing roster
// validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameInvalid) ||
		errors.Is(err, ErrNameDuplicate) ||
		errors.Is(err, ErrRosterFull) ||
		errors.Is(err, ErrPlayerNotFound)
}
