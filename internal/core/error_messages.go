// Package core provides the plan service: it holds the parsed plan, applies
// week edits, saves changes to the configured store and records history.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Plan Errors (PLAN001-PLAN099)
//
//	PLAN001 - Week not found: That week does not exist in the plan
//	          Patterns: "week index out of range"
//
//	PLAN002 - Invalid edit: The edit could not be applied
//	          Patterns: "invalid edit"
//
//	PLAN003 - Unsaved changes: The plan changed on disk while edits were pending
//	          Patterns: "unsaved changes"
//
//	PLAN004 - Plan not loaded: No plan has been loaded yet
//	          Patterns: "plan not loaded"
//
// # Save Errors (SAVE001-SAVE099)
//
//	SAVE001 - Conflict: The plan was changed by someone else
//	          Patterns: "save conflict"
//
//	SAVE002 - Unauthorized: GitHub rejected the access token
//	          Patterns: "status 401", "status 403"
//
//	SAVE003 - GitHub error: GitHub rejected the save
//	          Patterns: "github api error"
//
//	SAVE004 - Busy: Another save is still running
//	          Patterns: "too many concurrent saves"
//
//	SAVE005 - Not configured: The GitHub target is incomplete
//	          Patterns: "github settings"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: The posted plan exceeds the size limit
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: The plan is not valid CSV
//	          Patterns: "invalid csv"
//
//	FILE003 - Missing file: The plan file does not exist
//	          Patterns: "plan file not found"
//
//	FILE004 - Empty file: The posted plan is empty
//	          Patterns: "empty file"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: "context canceled"
//	REQ002 - Request timeout: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Plan Errors (PLAN001-PLAN004)
	// =========================================================================
	{
		pattern: "week index out of range",
		msg: UserMessage{
			Message: "That week does not exist in the plan",
			Action:  "Reload the page to see the current weeks",
			Code:    "PLAN001",
		},
	},
	{
		pattern: "invalid edit",
		msg: UserMessage{
			Message: "The edit could not be applied",
			Action:  "Mileage must be a non-negative number",
			Code:    "PLAN002",
		},
	},
	{
		pattern: "unsaved changes",
		msg: UserMessage{
			Message: "The plan changed on disk while edits were pending",
			Action:  "Wait for your edits to save, then reload",
			Code:    "PLAN003",
		},
	},
	{
		pattern: "plan not loaded",
		msg: UserMessage{
			Message: "No plan has been loaded yet",
			Action:  "Check the plan source configuration and restart",
			Code:    "PLAN004",
		},
	},

	// =========================================================================
	// Save Errors (SAVE001-SAVE005)
	// =========================================================================
	{
		pattern: "save conflict",
		msg: UserMessage{
			Message: "The plan was changed by someone else",
			Action:  "Reload the plan and apply your edit again",
			Code:    "SAVE001",
		},
	},
	{
		pattern: "status 401",
		msg: UserMessage{
			Message: "GitHub rejected the access token",
			Action:  "Check that GITHUB_TOKEN is valid",
			Code:    "SAVE002",
		},
	},
	{
		pattern: "status 403",
		msg: UserMessage{
			Message: "GitHub rejected the access token",
			Action:  "Check that GITHUB_TOKEN can write repository contents",
			Code:    "SAVE002",
		},
	},
	{
		pattern: "github api error",
		msg: UserMessage{
			Message: "GitHub rejected the save",
			Action:  "Please try again later",
			Code:    "SAVE003",
		},
	},
	{
		pattern: "too many concurrent saves",
		msg: UserMessage{
			Message: "Another save is still running",
			Action:  "Please wait a moment and try again",
			Code:    "SAVE004",
		},
	},
	{
		pattern: "github settings",
		msg: UserMessage{
			Message: "The GitHub target is incomplete",
			Action:  "Set owner, repo and path in the settings file",
			Code:    "SAVE005",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The plan exceeds the maximum size",
			Action:  "Remove unused rows from the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The plan exceeds the maximum size",
			Action:  "Remove unused rows from the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The plan is not valid CSV",
			Action:  "Check the file for a quote that is never closed",
			Code:    "FILE002",
		},
	},
	{
		pattern: "plan file not found",
		msg: UserMessage{
			Message: "The plan file does not exist",
			Action:  "Check PLAN_PATH or the GitHub settings",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The posted plan is empty",
			Action:  "Send the full CSV text of the plan",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// These errors come from the edit history store.
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Check your connection and try again",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("github save: %w", persist.ErrConflict)
//	msg := MapError(err)
//	// msg.Code == "SAVE001"
//	// msg.Message == "The plan was changed by someone else"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The plan was changed by someone else (Code: SAVE001). Reload the plan and apply your edit again"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(saveErr)
//	log.Error(ue.Technical)          // Log original error
//	fmt.Println(ue.Error())           // Show "The plan was changed by someone else"
//	fmt.Println(ue.User.Code)         // Show "SAVE001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
