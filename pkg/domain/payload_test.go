package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

func TestContactPayload_Validate(t *testing.T) {
	valid := domain.ContactPayload{Name: "Ada", Email: "ada@example.com"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		payload domain.ContactPayload
		field   string
	}{
		{"missing name", domain.ContactPayload{Email: "ada@example.com"}, "name"},
		{"missing email", domain.ContactPayload{Name: "Ada"}, "email"},
		{"malformed email", domain.ContactPayload{Name: "Ada", Email: "not-an-email"}, "email"},
		{"bad method", domain.ContactPayload{Name: "Ada", Email: "ada@example.com", PreferredMethod: "fax"}, "preferred_method"},
		{"phone method without phone", domain.ContactPayload{Name: "Ada", Email: "ada@example.com", PreferredMethod: "phone"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			var fieldErr *domain.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestQualificationPayload_Validate(t *testing.T) {
	assert.NoError(t, domain.QualificationPayload{Budget: "ready"}.Validate())

	err := domain.QualificationPayload{}.Validate()
	var fieldErr *domain.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "budget", fieldErr.Field)
}

func TestDecodePayload_Kinds(t *testing.T) {
	contact, err := domain.DecodePayload("contact", map[string]any{
		"name": "Ada", "email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.IsType(t, domain.ContactPayload{}, contact)

	waitlist, err := domain.DecodePayload("waitlist", map[string]any{
		"name": "Ada", "email": "ada@example.com",
	})
	require.NoError(t, err)
	wp, ok := waitlist.(domain.WaitlistPayload)
	require.True(t, ok)
	assert.Equal(t, "Ada", wp.Name, "squashed contact fields decode onto the embedded struct")

	_, err = domain.DecodePayload("hologram", nil)
	assert.Error(t, err)
}

func TestEncodePayload_RoundTrip(t *testing.T) {
	kind, data, err := domain.EncodePayload(domain.QualificationPayload{
		Budget: "ready", Timeline: "now",
	})
	require.NoError(t, err)
	assert.Equal(t, "qualification", kind)

	decoded, err := domain.DecodePayload(kind, data)
	require.NoError(t, err)
	assert.Equal(t, domain.QualificationPayload{Budget: "ready", Timeline: "now"}, decoded)
}

func TestEncodePayload_Nil(t *testing.T) {
	kind, data, err := domain.EncodePayload(nil)
	require.NoError(t, err)
	assert.Empty(t, kind)
	assert.Nil(t, data)
}
