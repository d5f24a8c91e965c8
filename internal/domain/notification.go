package domain

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID              uuid.UUID        `json:"id"`
	RecipientID     string           `json:"recipient_id"`
	RecipientType   ActorType        `json:"recipient_type"`
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	RelatedEntityID *uuid.UUID       `json:"related_entity_id,omitempty"`
	IsRead          bool             `json:"is_read"`
	ReadAt          *time.Time       `json:"read_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (n *Notification) Recipient() Recipient {
	return Recipient{ID: n.RecipientID, Type: n.RecipientType}
}

type NotificationType string

const (
	NotifApplication  NotificationType = "application"
	NotifStatus       NotificationType = "status"
	NotifDeadline     NotificationType = "deadline"
	NotifApproval     NotificationType = "approval"
	NotifRejection    NotificationType = "rejection"
	NotifRegistration NotificationType = "registration"
	NotifReport       NotificationType = "report"
)

// Recipient identifies one mailbox.
type Recipient struct {
	ID   string    `json:"id"`
	Type ActorType `json:"type"`
}

// Message is the composed email equivalent handed to the send collaborator.
type Message struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
