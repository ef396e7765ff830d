package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case checks that errors.Is sees the sentinel through the *AppError wrapper,
// and that unrelated sentinels do not match.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("file", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("fileName", "file name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "AlreadyExists wraps ErrConflict",
			err:       AlreadyExists("user", "email", "a@x.com"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "WrongPassword wraps ErrWrongPassword",
			err:       WrongPassword(),
			target:    ErrWrongPassword,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("no active session"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped again with fmt.Errorf still matches",
			err:       fmt.Errorf("service: %w", Forbidden("not yours")),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("file", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "WrongPassword does NOT match ErrInvalidCredentials",
			err:       WrongPassword(),
			target:    ErrInvalidCredentials,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("file", "abc123"),
			wantMessage: "file not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("fileName", "file name is required"),
			wantMessage: "file name is required",
		},
		{
			name:        "AlreadyExists names the colliding value",
			err:         AlreadyExists("user", "email", "a@x.com"),
			wantMessage: "user with email a@x.com already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("user", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestFieldIsRecorded(t *testing.T) {
	if err := ValidationFailed("email", "email is required"); err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if err := WrongPassword(); err.Field != "currentPassword" {
		t.Errorf("Field = %q, want %q", err.Field, "currentPassword")
	}
}
