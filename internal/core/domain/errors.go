package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")

	// ErrExportBlocked gates export actions while blocking flags remain.
	ErrExportBlocked = errors.New("export blocked by validation")
)

// ExportBlockedMessage is the user-facing text shown when an export action
// is rejected before any backend call is made.
const ExportBlockedMessage = "Please resolve blocking issues first."

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
