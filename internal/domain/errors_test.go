package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neomorfeo/gatherly/internal/domain"
)

func TestNotFoundError_Error(t *testing.T) {
	err := domain.NotFound(domain.EntityUser, "u-1")
	want := `user "u-1" not found`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Entity:  domain.EntityRequest,
		Action:  string(domain.ActionConfirm),
		Current: string(domain.RequestCanceled),
	}
	want := `request action "confirm" is not valid from status "CANCELED"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("checking user: %w", domain.NotFound(domain.EntityUser, "u-9"))
	if !domain.IsNotFound(err) {
		t.Error("expected wrapped NotFoundError to be detected")
	}
}

func TestUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &domain.UnavailableError{Directory: "user", ID: "u-1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("UnavailableError should unwrap to its cause")
	}
	if domain.IsNotFound(err) {
		t.Error("unavailable must not be reported as not found")
	}
}
