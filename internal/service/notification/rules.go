package notification

import "internship-portal/internal/domain"

type RecipientRole string

const (
	RoleOwner        RecipientRole = "owner"
	RoleCounterparty RecipientRole = "counterparty"
)

// Rule describes what a transition produces. Key is the catalog prefix; the
// title and message live under Key+".title" and Key+".message".
type Rule struct {
	Recipient   RecipientRole
	Type        domain.NotificationType
	Key         string
	SendMessage bool
}

type ruleKey struct {
	Kind domain.EntityKind
	From domain.Status
	To   domain.Status
}

// rules covers creation edges (From == StatusNone) and status edges. A
// missing entry means the transition notifies nobody.
var rules = map[ruleKey]Rule{
	{domain.KindCompanyRegistration, domain.StatusNone, domain.StatusPending}: {
		Recipient: RoleCounterparty, Type: domain.NotifRegistration, Key: "company_registration.created", SendMessage: true,
	},
	{domain.KindCompanyRegistration, domain.StatusPending, domain.StatusActive}: {
		Recipient: RoleOwner, Type: domain.NotifApproval, Key: "company_registration.active", SendMessage: true,
	},
	{domain.KindCompanyRegistration, domain.StatusPending, domain.StatusRejected}: {
		Recipient: RoleOwner, Type: domain.NotifRejection, Key: "company_registration.rejected", SendMessage: true,
	},

	{domain.KindApplication, domain.StatusNone, domain.StatusPending}: {
		Recipient: RoleCounterparty, Type: domain.NotifApplication, Key: "application.created", SendMessage: true,
	},
	{domain.KindApplication, domain.StatusPending, domain.StatusAccepted}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "application.accepted", SendMessage: true,
	},
	{domain.KindApplication, domain.StatusAccepted, domain.StatusFinalized}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "application.finalized",
	},
	{domain.KindApplication, domain.StatusPending, domain.StatusRejected}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "application.rejected", SendMessage: true,
	},
	{domain.KindApplication, domain.StatusAccepted, domain.StatusRejected}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "application.rejected", SendMessage: true,
	},

	{domain.KindReport, domain.StatusDraft, domain.StatusPending}: {
		Recipient: RoleCounterparty, Type: domain.NotifReport, Key: "report.submitted",
	},
	{domain.KindReport, domain.StatusPending, domain.StatusAccepted}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "report.accepted", SendMessage: true,
	},
	{domain.KindReport, domain.StatusPending, domain.StatusRejected}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "report.rejected", SendMessage: true,
	},
	{domain.KindReport, domain.StatusPending, domain.StatusFlagged}: {
		Recipient: RoleOwner, Type: domain.NotifStatus, Key: "report.flagged", SendMessage: true,
	},
}

// DeadlineRule is used for draft reminders, outside the transition table.
var DeadlineRule = Rule{Recipient: RoleOwner, Type: domain.NotifDeadline, Key: "report.deadline"}

func RuleFor(kind domain.EntityKind, from, to domain.Status) (Rule, bool) {
	rule, ok := rules[ruleKey{Kind: kind, From: from, To: to}]
	return rule, ok
}

func resolveRecipient(role RecipientRole, entity *domain.Entity) (domain.Recipient, string) {
	if role == RoleCounterparty {
		return domain.Recipient{ID: entity.CounterpartyID, Type: entity.CounterpartyType}, entity.CounterpartyContact
	}
	return domain.Recipient{ID: entity.OwnerID, Type: entity.OwnerType}, entity.OwnerContact
}
