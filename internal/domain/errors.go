package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type InvalidTransitionError struct {
	Kind EntityKind
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "<none>"
	}
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Kind, from, e.To)
}

type MissingReasonError struct {
	Kind EntityKind
	To   Status
}

func (e *MissingReasonError) Error() string {
	return fmt.Sprintf("a reason is required to move %s to %s", e.Kind, e.To)
}

type ImmutableAfterSubmitError struct {
	ID     uuid.UUID
	Status Status
}

func (e *ImmutableAfterSubmitError) Error() string {
	return fmt.Sprintf("entity %s can no longer be edited in status %s", e.ID, e.Status)
}

// SendFailure wraps an outbound message error. It is a warning: the transition
// and the stored notification stay in place.
type SendFailure struct {
	EntityID uuid.UUID
	To       string
	Err      error
}

func (e *SendFailure) Error() string {
	return fmt.Sprintf("failed to send message to %s for entity %s: %v", e.To, e.EntityID, e.Err)
}

func (e *SendFailure) Unwrap() error {
	return e.Err
}
