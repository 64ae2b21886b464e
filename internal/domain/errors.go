package domain

import "errors"

var (
	// ErrCatalogEmpty is returned when no questions are available to play.
	ErrCatalogEmpty = errors.New("question catalog is empty")
	// ErrInvalidQuestion indicates a catalog entry that violates the game's assumptions.
	ErrInvalidQuestion = errors.New("invalid question in catalog")
	// ErrAnswerNotFound indicates a submitted answer ID that is not on the current question.
	ErrAnswerNotFound = errors.New("answer not found on current question")
	// ErrAnswerPending is returned while a reveal is in flight for the current question.
	ErrAnswerPending = errors.New("answer already submitted for current question")
	// ErrGameFinished is returned when submitting to a terminal session.
	ErrGameFinished = errors.New("game session already finished")
	// ErrUserNotFound indicates no stats record exists for the user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a registration with an already-registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email or wrong password on login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken indicates a missing, malformed or expired auth token.
	ErrInvalidToken = errors.New("invalid auth token")
)
