package email

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"internship-portal/internal/domain"
	"internship-portal/internal/pkg/i18n"
)

//go:embed templates/*.tmpl templates/layout.html
var templateFS embed.FS

var messageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	TemplateApproved        = "approved"
	TemplateRejected        = "rejected"
	TemplateFlagged         = "flagged"
	TemplateNewApplication  = "new_application"
	TemplateNewRegistration = "new_registration"
)

// Composed is the subject/body pair produced for a transition.
type Composed struct {
	Template string
	Subject  string
	Body     string
}

type ErrNoTemplate struct {
	Kind       domain.EntityKind
	Transition domain.Transition
}

func (e *ErrNoTemplate) Error() string {
	return fmt.Sprintf("no message template for %s %q -> %q", e.Kind, e.Transition.From, e.Transition.To)
}

// Composer renders messages from fixed templates. It has no side effects and
// the same inputs always produce the same output.
type Composer struct {
	catalog *i18n.Catalog
	locale  string
}

func NewComposer(catalog *i18n.Catalog, locale string) *Composer {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	return &Composer{catalog: catalog, locale: locale}
}

// TemplateFor picks the template for an edge, or "" when none applies.
func TemplateFor(kind domain.EntityKind, t domain.Transition) string {
	if t.From == domain.StatusNone {
		switch kind {
		case domain.KindApplication:
			return TemplateNewApplication
		case domain.KindCompanyRegistration:
			return TemplateNewRegistration
		}
		return ""
	}

	switch t.To {
	case domain.StatusActive, domain.StatusAccepted:
		return TemplateApproved
	case domain.StatusRejected:
		return TemplateRejected
	case domain.StatusFlagged:
		return TemplateFlagged
	}
	return ""
}

func (c *Composer) Compose(kind domain.EntityKind, t domain.Transition, entity *domain.Entity, extra map[string]string) (Composed, error) {
	name := TemplateFor(kind, t)
	if name == "" {
		return Composed{}, &ErrNoTemplate{Kind: kind, Transition: t}
	}

	data := struct {
		Label  string
		Name   string
		Status string
		Reason string
		Attrs  map[string]string
	}{
		Label:  c.label(kind),
		Name:   DisplayName(entity),
		Status: strings.ToLower(string(t.To)),
		Reason: extra["reason"],
		Attrs:  mergeAttrs(entity.Attributes, extra),
	}

	subject, err := execute(name+".subject", data)
	if err != nil {
		return Composed{}, err
	}
	body, err := execute(name+".body", data)
	if err != nil {
		return Composed{}, err
	}

	return Composed{Template: name, Subject: subject, Body: body}, nil
}

func (c *Composer) label(kind domain.EntityKind) string {
	if c.catalog == nil {
		return string(kind)
	}
	return c.catalog.Label(c.locale, string(kind))
}

// DisplayName is the human name of an entity used in subjects and titles.
func DisplayName(entity *domain.Entity) string {
	switch entity.Kind {
	case domain.KindCompanyRegistration:
		return entity.Attr(domain.AttrCompanyName)
	case domain.KindApplication:
		return entity.Attr(domain.AttrPositionTitle)
	case domain.KindReport:
		return entity.Attr(domain.AttrTitle)
	}
	return entity.ID.String()
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute message template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func mergeAttrs(attrs, extra map[string]string) map[string]string {
	out := make(map[string]string, len(attrs)+len(extra))
	for k, v := range attrs {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
