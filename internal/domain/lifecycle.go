package domain

import (
	"sort"
	"strings"
)

type Status string

const (
	// StatusNone is the "from" side of the creation edge.
	StatusNone      Status = ""
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusAccepted  Status = "ACCEPTED"
	StatusFinalized Status = "FINALIZED"
	StatusRejected  Status = "REJECTED"
	StatusFlagged   Status = "FLAGGED"
)

type Transition struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

type lifecycle struct {
	initial          Status
	editable         Status
	states           []Status
	edges            map[Transition]bool // value reports whether a reason is required
	ownerTypes       []ActorType
	counterpartyType []ActorType
	required         []string
}

// lifecycles is the only definition of legal states and edges per kind.
var lifecycles = map[EntityKind]lifecycle{
	KindCompanyRegistration: {
		initial: StatusPending,
		states:  []Status{StatusPending, StatusActive, StatusRejected},
		edges: map[Transition]bool{
			{StatusPending, StatusActive}:   false,
			{StatusPending, StatusRejected}: true,
		},
		ownerTypes:       []ActorType{ActorCompany},
		counterpartyType: []ActorType{ActorSCAD},
		required:         []string{AttrCompanyName},
	},
	KindApplication: {
		initial: StatusPending,
		states:  []Status{StatusPending, StatusAccepted, StatusFinalized, StatusRejected},
		edges: map[Transition]bool{
			{StatusPending, StatusAccepted}:   false,
			{StatusAccepted, StatusFinalized}: false,
			{StatusPending, StatusRejected}:   true,
			{StatusAccepted, StatusRejected}:  true,
		},
		ownerTypes:       []ActorType{ActorStudent},
		counterpartyType: []ActorType{ActorCompany},
		required:         []string{AttrPositionTitle, AttrCompanyName},
	},
	KindReport: {
		initial:  StatusDraft,
		editable: StatusDraft,
		states:   []Status{StatusDraft, StatusPending, StatusAccepted, StatusRejected, StatusFlagged},
		edges: map[Transition]bool{
			{StatusDraft, StatusPending}:    false,
			{StatusPending, StatusAccepted}: false,
			{StatusPending, StatusRejected}: true,
			{StatusPending, StatusFlagged}:  true,
		},
		ownerTypes:       []ActorType{ActorStudent},
		counterpartyType: []ActorType{ActorFaculty, ActorSCAD},
		required:         []string{AttrTitle},
	},
}

func Kinds() []EntityKind {
	return []EntityKind{KindApplication, KindReport, KindCompanyRegistration}
}

func (k EntityKind) Valid() bool {
	_, ok := lifecycles[k]
	return ok
}

func InitialStatus(kind EntityKind) (Status, bool) {
	lc, ok := lifecycles[kind]
	if !ok {
		return StatusNone, false
	}
	return lc.initial, true
}

func States(kind EntityKind) []Status {
	lc := lifecycles[kind]
	out := make([]Status, len(lc.states))
	copy(out, lc.states)
	return out
}

func IsLegalStatus(kind EntityKind, status Status) bool {
	for _, s := range lifecycles[kind].states {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from the given one, sorted
// for stable output.
func AllowedTransitions(kind EntityKind, from Status) []Status {
	var out []Status
	for edge := range lifecycles[kind].edges {
		if edge.From == from {
			out = append(out, edge.To)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func RequiresReason(kind EntityKind, from, to Status) bool {
	return lifecycles[kind].edges[Transition{From: from, To: to}]
}

// ValidateTransition checks the edge and its reason. It never mutates.
func ValidateTransition(kind EntityKind, from, to Status, reason *string) error {
	lc, ok := lifecycles[kind]
	if !ok {
		return &InvalidTransitionError{Kind: kind, From: from, To: to}
	}

	needsReason, ok := lc.edges[Transition{From: from, To: to}]
	if !ok {
		return &InvalidTransitionError{Kind: kind, From: from, To: to}
	}

	if needsReason && IsBlank(reason) {
		return &MissingReasonError{Kind: kind, To: to}
	}

	return nil
}

// CanEditContent reports whether content edits are allowed in the status.
// Kinds without a draft state are never editable once created.
func CanEditContent(kind EntityKind, status Status) bool {
	lc := lifecycles[kind]
	return lc.editable != StatusNone && lc.editable == status
}

// ValidateCreate checks the creation payload for the kind's required fields.
func ValidateCreate(input CreateEntityInput) error {
	lc, ok := lifecycles[input.Kind]
	if !ok {
		return &ValidationError{Field: "kind", Message: "unknown entity kind"}
	}

	if strings.TrimSpace(input.OwnerID) == "" {
		return &ValidationError{Field: "owner_id", Message: "owner_id is required"}
	}
	if !containsActor(lc.ownerTypes, input.OwnerType) {
		return &ValidationError{Field: "owner_type", Message: "owner_type not allowed for " + string(input.Kind)}
	}

	if strings.TrimSpace(input.CounterpartyID) == "" {
		return &ValidationError{Field: "counterparty_id", Message: "counterparty_id is required"}
	}
	if !containsActor(lc.counterpartyType, input.CounterpartyType) {
		return &ValidationError{Field: "counterparty_type", Message: "counterparty_type not allowed for " + string(input.Kind)}
	}

	for _, key := range lc.required {
		if strings.TrimSpace(input.Attributes[key]) == "" {
			return &ValidationError{Field: "attributes." + key, Message: key + " is required"}
		}
	}

	return nil
}

func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func containsActor(list []ActorType, t ActorType) bool {
	for _, a := range list {
		if a == t {
			return true
		}
	}
	return false
}
