package validation

import (
	"context"
	"strings"
	"testing"

	"glampstay/internal/app/apperr"
)

type guests struct {
	Adults int `json:"adults" validate:"gte=1"`
}

type requestStay struct {
	PropertyID string `json:"propertyId" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Guests     guests `json:"guests"`
}

func TestValidatorReportsFieldsAsValidationError(t *testing.T) {
	err := New().Validate(context.Background(), requestStay{Email: "nope"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"propertyId is required", "email must be a valid email", "guests.adults failed gte"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestValidatorAcceptsValidAndNonStructMessages(t *testing.T) {
	v := New()
	ok := &requestStay{PropertyID: "p-1", Email: "ada@example.com", Guests: guests{Adults: 2}}
	if err := v.Validate(context.Background(), ok); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if err := v.Validate(context.Background(), "plain string"); err != nil {
		t.Fatalf("non-struct message rejected: %v", err)
	}
}
