package services

import (
	"errors"
	"strings"
)

// Sentinel errors shared across services and mapped to HTTP statuses in the
// handler layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed   = errors.New("validation failed")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentClosed   = errors.New("tournament is closed")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrRosterEmpty        = errors.New("roster contains no players")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrRemoteTimeout      = errors.New("the backend did not respond in time, check your connection")
)

// authPhrases are the markers of an authentication failure coming back from
// a collaborator. Commands failing this way clear the session instead of
// showing an error dialog.
var authPhrases = []string{
	"session expired",
	"unauthorized",
	"401",
	"invalid or expired token",
}

// IsAuthError classifies an error as an authentication failure by matching
// the known phrases.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range authPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
