package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	KindApplication         EntityKind = "APPLICATION"
	KindReport              EntityKind = "REPORT"
	KindCompanyRegistration EntityKind = "COMPANY_REGISTRATION"
)

type ActorType string

const (
	ActorStudent ActorType = "STUDENT"
	ActorCompany ActorType = "COMPANY"
	ActorFaculty ActorType = "FACULTY"
	ActorSCAD    ActorType = "SCAD_OFFICE"
)

func (t ActorType) Valid() bool {
	switch t {
	case ActorStudent, ActorCompany, ActorFaculty, ActorSCAD:
		return true
	}
	return false
}

// Well-known attribute keys. Templates refer to them by the same names.
const (
	AttrCompanyName   = "company_name"
	AttrPositionTitle = "position_title"
	AttrStudentName   = "student_name"
	AttrTitle         = "title"
	AttrContent       = "content"
	AttrIndustry      = "industry"
)

type Entity struct {
	ID                  uuid.UUID         `json:"id"`
	Kind                EntityKind        `json:"kind"`
	Status              Status            `json:"status"`
	OwnerID             string            `json:"owner_id"`
	OwnerType           ActorType         `json:"owner_type"`
	OwnerContact        string            `json:"owner_contact,omitempty"`
	CounterpartyID      string            `json:"counterparty_id"`
	CounterpartyType    ActorType         `json:"counterparty_type"`
	CounterpartyContact string            `json:"counterparty_contact,omitempty"`
	Attributes          map[string]string `json:"attributes"`
	History             []HistoryEntry    `json:"history"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Reason    *string   `json:"reason,omitempty"`
}

// Attr returns the attribute value or "" when unset.
func (e *Entity) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

// Clone returns a deep copy so callers never share history or attribute
// storage with the store.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}

	out := *e
	out.Attributes = make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		out.Attributes[k] = v
	}

	out.History = make([]HistoryEntry, len(e.History))
	for i, h := range e.History {
		out.History[i] = h
		if h.Reason != nil {
			reason := *h.Reason
			out.History[i].Reason = &reason
		}
	}

	return &out
}

// LastHistory returns the most recent history entry.
func (e *Entity) LastHistory() HistoryEntry {
	if len(e.History) == 0 {
		return HistoryEntry{}
	}
	return e.History[len(e.History)-1]
}

type CreateEntityInput struct {
	Kind                EntityKind        `json:"kind"`
	OwnerID             string            `json:"owner_id"`
	OwnerType           ActorType         `json:"owner_type"`
	OwnerContact        string            `json:"owner_contact,omitempty"`
	CounterpartyID      string            `json:"counterparty_id"`
	CounterpartyType    ActorType         `json:"counterparty_type"`
	CounterpartyContact string            `json:"counterparty_contact,omitempty"`
	Attributes          map[string]string `json:"attributes"`
}

type UpdateContentInput struct {
	Attributes map[string]string `json:"attributes"`
}

type TransitionInput struct {
	Status Status  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// EntityFilter selects entities by any combination of fields. Zero values
// match everything.
type EntityFilter struct {
	Kind           EntityKind `query:"kind"`
	Status         Status     `query:"status"`
	OwnerID        string     `query:"owner_id"`
	CounterpartyID string     `query:"counterparty_id"`
}

func (f EntityFilter) Match(e *Entity) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.OwnerID != "" && e.OwnerID != f.OwnerID {
		return false
	}
	if f.CounterpartyID != "" && e.CounterpartyID != f.CounterpartyID {
		return false
	}
	return true
}
