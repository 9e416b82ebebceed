package model

import "errors"

var (
	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Trash related errors
	ErrTrashItemNotFound  = errors.New("trash item not found")
	ErrAlreadyTrashed     = errors.New("item already in trash")
	ErrDeleteVerification = errors.New("trash record still present after delete")
	ErrStorageWrite       = errors.New("storage write failed")

	// Restore related errors
	ErrMissingParent     = errors.New("parent record not found")
	ErrUnsupportedType   = errors.New("no restore strategy registered for type")
	ErrRestoreInProgress = errors.New("restore already in progress")

	// Collaborator errors
	ErrEntityNotFound = errors.New("entity not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
