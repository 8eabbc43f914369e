package domain

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Payload kinds. Each kind maps to exactly one concrete payload type so the
// choice history stays inspectable instead of carrying untyped bags.
const (
	PayloadKindContact       = "contact"
	PayloadKindQualification = "qualification"
	PayloadKindWaitlist      = "waitlist"
	PayloadKindNote          = "note"
)

// ChoicePayload is structured data captured alongside a choice.
type ChoicePayload interface {
	PayloadKind() string
}

// PayloadValidator is implemented by payloads with user-supplied fields.
// Validation failures surface to the visitor as field-level messages and
// never mutate session state.
type PayloadValidator interface {
	Validate() error
}

// FieldError is a user-visible validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ContactPayload captures lead contact details at a data-entry scene.
type ContactPayload struct {
	Name            string `json:"name" mapstructure:"name"`
	Email           string `json:"email" mapstructure:"email"`
	Phone           string `json:"phone,omitempty" mapstructure:"phone"`
	PreferredMethod string `json:"preferred_method,omitempty" mapstructure:"preferred_method"`
}

// PayloadKind implements ChoicePayload.
func (ContactPayload) PayloadKind() string { return PayloadKindContact }

// Validate checks the user-supplied contact fields.
func (p ContactPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &FieldError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(p.Email) == "" {
		return &FieldError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return &FieldError{Field: "email", Message: "email address is not valid"}
	}
	switch p.PreferredMethod {
	case "", "email", "phone", "text":
	default:
		return &FieldError{Field: "preferred_method", Message: "must be email, phone or text"}
	}
	if p.PreferredMethod != "" && p.PreferredMethod != "email" && strings.TrimSpace(p.Phone) == "" {
		return &FieldError{Field: "phone", Message: "phone is required for phone or text contact"}
	}
	return nil
}

// WaitlistPayload captures the same contact fields as ContactPayload but
// routes to the waitlist table instead of the contact-request table.
type WaitlistPayload struct {
	ContactPayload `mapstructure:",squash"`
}

// PayloadKind implements ChoicePayload.
func (WaitlistPayload) PayloadKind() string { return PayloadKindWaitlist }

// QualificationPayload captures budget/readiness answers at a
// qualification screen.
type QualificationPayload struct {
	Budget    string `json:"budget" mapstructure:"budget"`
	Timeline  string `json:"timeline,omitempty" mapstructure:"timeline"`
	Readiness string `json:"readiness,omitempty" mapstructure:"readiness"`
}

// PayloadKind implements ChoicePayload.
func (QualificationPayload) PayloadKind() string { return PayloadKindQualification }

// Validate checks the qualification answers.
func (p QualificationPayload) Validate() error {
	if strings.TrimSpace(p.Budget) == "" {
		return &FieldError{Field: "budget", Message: "budget answer is required"}
	}
	return nil
}

// NotePayload carries free-text the visitor typed at a scene.
type NotePayload struct {
	Text string `json:"text" mapstructure:"text"`
}

// PayloadKind implements ChoicePayload.
func (NotePayload) PayloadKind() string { return PayloadKindNote }

// DecodePayload turns a kind tag plus a generic map (from JSON bodies or
// snapshots) into the concrete payload type.
func DecodePayload(kind string, data map[string]any) (ChoicePayload, error) {
	var target ChoicePayload
	switch kind {
	case PayloadKindContact:
		var p ContactPayload
		if err := mapstructure.Decode(data, &p); err != nil {
			return nil, fmt.Errorf("decode contact payload: %w", err)
		}
		target = p
	case PayloadKindWaitlist:
		var p WaitlistPayload
		if err := mapstructure.Decode(data, &p); err != nil {
			return nil, fmt.Errorf("decode waitlist payload: %w", err)
		}
		target = p
	case PayloadKindQualification:
		var p QualificationPayload
		if err := mapstructure.Decode(data, &p); err != nil {
			return nil, fmt.Errorf("decode qualification payload: %w", err)
		}
		target = p
	case PayloadKindNote:
		var p NotePayload
		if err := mapstructure.Decode(data, &p); err != nil {
			return nil, fmt.Errorf("decode note payload: %w", err)
		}
		target = p
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
	return target, nil
}

// EncodePayload flattens a payload into its kind tag and a generic map for
// the snapshot envelope.
func EncodePayload(p ChoicePayload) (string, map[string]any, error) {
	if p == nil {
		return "", nil, nil
	}
	data := make(map[string]any)
	if err := mapstructure.Decode(p, &data); err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", p.PayloadKind(), err)
	}
	return p.PayloadKind(), data, nil
}
