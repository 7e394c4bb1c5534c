package core

// error_messages.go turns technical errors into short coded messages that are
// safe to show to users. The technical error is logged by the caller.
//
// Codes:
//
//	DB001  Account number already exists
//	DB002  Unique value already exists
//	DB003  Referenced record does not exist
//	DB004  Unable to connect to database
//	DB005  Database connection was interrupted
//	DB006  Operation timed out
//	DB007  Database was busy with conflicting operations
//	VAL001 Form validation failed
//	VAL002 Value too long for its column
//	VAL003 Invalid number
//	FILE001 File too large
//	FILE002 Invalid CSV
//	FILE003 Not a CSV file
//	FILE004 No file provided
//	FILE005 Empty file
//	IMP001 Import aborted on a row
//	IMP002 Too many imports in progress
//	IMP003 Missing Name column
//	ERR000 Anything else; check the logs
//
// Typed errors are matched first with errors.As/Is. Other errors fall back to
// case-insensitive substring patterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Constraints
	{"profiles_number_key", UserMessage{"Account Number already exists.", "Use a different account number", "DB001"}},
	{"duplicate key", UserMessage{"This value must be unique but already exists", "Check for duplicate entries", "DB002"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Check for duplicate entries", "DB002"}},
	{"foreign key", UserMessage{"Referenced record does not exist", "Reload the page and try again", "DB003"}},
	{"value too long", UserMessage{"A value is too long for its field", "Shorten the value and try again", "VAL002"}},
	{"numeric field overflow", UserMessage{"A number is too large for its field", "Check credit limit and tax rate", "VAL003"}},
	{"invalid input syntax", UserMessage{"Invalid number format detected", "Use a plain decimal such as 1234.56", "VAL003"}},

	// Connectivity
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Files
	{"request body too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"wrong number of fields", UserMessage{"File is not a valid CSV", "Ensure rows are comma-separated with consistent quoting", "FILE002"}},
	{"bare \" in non-quoted-field", UserMessage{"File is not a valid CSV", "Ensure rows are comma-separated with consistent quoting", "FILE002"}},
	{"extraneous or missing \" in quoted-field", UserMessage{"File is not a valid CSV", "Ensure rows are comma-separated with consistent quoting", "FILE002"}},
}

var (
	msgValidation   = UserMessage{"Form validation failed.", "Correct the highlighted fields", "VAL001"}
	msgNotCSV       = UserMessage{"File is not CSV type", "Choose a file ending in .csv", "FILE003"}
	msgNoFile       = UserMessage{"No file was selected", "Please select a CSV file to import", "FILE004"}
	msgEmptyFile    = UserMessage{"The uploaded file is empty", "Please upload a CSV file with a header row", "FILE005"}
	msgImportBusy   = UserMessage{"Too many imports in progress", "Please wait a moment and try again", "IMP002"}
	msgMissingName  = UserMessage{"Name column is missing", "Export a file first and use its header row", "IMP003"}
	msgCancelled    = UserMessage{"Request was cancelled", "Please try again", "DB006"}
	defaultMessage  = UserMessage{"An unexpected error occurred", "Please try again or contact support", "ERR000"}
	sentinelMessage = map[error]UserMessage{
		ErrNotCSV:            msgNotCSV,
		ErrNoFile:            msgNoFile,
		ErrEmptyFile:         msgEmptyFile,
		ErrTooManyImports:    msgImportBusy,
		ErrMissingNameColumn: msgMissingName,
	}
)

// MapError converts a technical error to a user-friendly message.
// Returns the ERR000 fallback when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return msgValidation
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return UserMessage{Message: ce.Message, Action: "Use a different value", Code: "DB001"}
	}
	for sentinel, msg := range sentinelMessage {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}
	}
	if errors.Is(err, context.Canceled) {
		return msgCancelled
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
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// ImportFailureMessage describes a failed import, naming the CSV line when
// the failure came from a row.
func ImportFailureMessage(err error) string {
	var ie *ImportError
	if errors.As(err, &ie) {
		msg := MapError(ie.Err)
		var ve *ValidationError
		if errors.As(ie.Err, &ve) {
			return fmt.Sprintf("Import failed at line %d (Code: IMP001). %s", ie.Line, ve.Error())
		}
		return fmt.Sprintf("Import failed at line %d (Code: IMP001). %s", ie.Line, msg.Message)
	}
	return "Import failed: " + FormatUserError(err)
}
