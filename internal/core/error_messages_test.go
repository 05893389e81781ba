package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/persist"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "out of range week",
			err:         fmt.Errorf("update week: %w", grid.ErrOutOfRange),
			wantCode:    "PLAN001",
			wantMessage: "That week does not exist in the plan",
		},
		{
			name:        "invalid edit",
			err:         fmt.Errorf("%w: actual mileage must be non-negative", ErrInvalidEdit),
			wantCode:    "PLAN002",
			wantMessage: "The edit could not be applied",
		},
		{
			name:        "reload with pending edits",
			err:         ErrUnsavedChanges,
			wantCode:    "PLAN003",
			wantMessage: "The plan changed on disk while edits were pending",
		},
		{
			name:        "save conflict",
			err:         fmt.Errorf("github save: %w", persist.ErrConflict),
			wantCode:    "SAVE001",
			wantMessage: "The plan was changed by someone else",
		},
		{
			name:        "bad token wins over generic api error",
			err:         &persist.APIError{Status: 401, Message: "Bad credentials"},
			wantCode:    "SAVE002",
			wantMessage: "GitHub rejected the access token",
		},
		{
			name:        "other api error",
			err:         &persist.APIError{Status: 502},
			wantCode:    "SAVE003",
			wantMessage: "GitHub rejected the save",
		},
		{
			name:        "busy",
			err:         ErrTooManySaves,
			wantCode:    "SAVE004",
			wantMessage: "Another save is still running",
		},
		{
			name:        "malformed csv",
			err:         fmt.Errorf("%w: quote opened on line 3 is never closed", grid.ErrMalformedInput),
			wantCode:    "FILE002",
			wantMessage: "The plan is not valid CSV",
		},
		{
			name:        "missing plan",
			err:         fmt.Errorf("%w: public/plan.csv", persist.ErrNotFound),
			wantCode:    "FILE003",
			wantMessage: "The plan file does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SAVE CONFLICT detected"),
			wantCode:    "SAVE001",
			wantMessage: "The plan was changed by someone else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(persist.ErrConflict)

	expected := "The plan was changed by someone else (Code: SAVE001). Reload the plan and apply your edit again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  grid.ErrOutOfRange,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("github save: %w", persist.ErrConflict)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The plan was changed by someone else" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, persist.ErrConflict) {
			t.Error("Unwrap() should return original error")
		}
	})
}
