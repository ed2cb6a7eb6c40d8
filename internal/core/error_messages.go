package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code to support staff.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the size limit
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV: the file could not be read as CSV
//	          Patterns: "parse csv"
//	FILE003 - Encoding error: the file contains unreadable characters
//	          Patterns: "encoding error"
//	FILE004 - No file: no file was selected
//	          Sentinel: ErrNoFile
//	FILE005 - Empty file: the file has no header row
//	          Sentinel: table.ErrEmptyFile
//	FILE006 - Unsupported format: extension is neither .csv nor .xlsx
//	          Sentinel: table.ErrUnsupportedFormat
//	FILE007 - Invalid workbook: the file could not be read as Excel
//	          Patterns: "parse excel"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL007 - Unknown column: a selected column is not in the file
//	         Sentinel: table.ErrUnknownColumn
//	VAL008 - Empty numeric column: no values to compute a mean from
//	         Sentinel: table.ErrEmptyNumericColumn
//	VAL009 - Invalid options: the conversion request is malformed
//	         Sentinel: table.ErrDuplicateColumn
//	         Patterns: "invalid options", "unknown target format"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: too many conversions in progress
//	         Sentinel: ErrTooManyConversions
//	UPL003 - Session expired: the uploaded file is gone
//	         Sentinel: ErrFileNotFound
//	UPL004 - Request cancelled
//	         Sentinel: context.Canceled
//	UPL005 - Request timeout
//	         Sentinel: context.DeadlineExceeded
//	UPL006 - Too many files in one upload
//	         Sentinel: ErrTooManyFiles
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check application logs for the technical error
//
// Sentinels are matched with errors.Is before any pattern. Patterns are
// matched case-insensitively with strings.Contains; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select one or more CSV or Excel files to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE005",
	}
	msgUnsupportedFormat = UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a .csv or .xlsx file",
		Code:    "FILE006",
	}
	msgUnknownColumn = UserMessage{
		Message: "A selected column does not exist in this file",
		Action:  "Reload the file page and select columns again",
		Code:    "VAL007",
	}
	msgEmptyNumericColumn = UserMessage{
		Message: "A numeric column has no values to average",
		Action:  "Its missing cells were left empty",
		Code:    "VAL008",
	}
	msgDuplicateColumn = UserMessage{
		Message: "A column was selected more than once",
		Action:  "Select each column only once",
		Code:    "VAL009",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgFileNotFound = UserMessage{
		Message: "Uploaded file not found",
		Action:  "The upload may have expired. Please upload the file again",
		Code:    "UPL003",
	}
	msgCanceled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgTooManyFiles = UserMessage{
		Message: "Too many files in one upload",
		Action:  "Upload the remaining files in another batch",
		Code:    "UPL006",
	}
)

// sentinelMessages are checked in order with errors.Is.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrNoFile, msgNoFile},
	{ErrTooManyFiles, msgTooManyFiles},
	{table.ErrUnsupportedFormat, msgUnsupportedFormat},
	{table.ErrEmptyFile, msgEmptyFile},
	{table.ErrUnknownColumn, msgUnknownColumn},
	{table.ErrDuplicateColumn, msgDuplicateColumn},
	{table.ErrEmptyNumericColumn, msgEmptyNumericColumn},
	{ErrTooManyConversions, msgBusy},
	{ErrFileNotFound, msgFileNotFound},
	{context.Canceled, msgCanceled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors without a sentinel. More specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum size",
			Action:  "Upload fewer or smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum size",
			Action:  "Upload fewer or smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains unreadable characters",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure every row has no more fields than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse excel",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Open the file in Excel and save it as .xlsx",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid options",
		msg: UserMessage{
			Message: "The conversion options are invalid",
			Action:  "Choose a target format and distinct columns",
			Code:    "VAL009",
		},
	},
	{
		pattern: "unknown target format",
		msg: UserMessage{
			Message: "Unknown target format",
			Action:  "Choose CSV or Excel",
			Code:    "VAL009",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Known
// sentinels win over text patterns; anything else maps to ERR000.
//
// Example:
//
//	_, err := table.DetectFormat("report.txt")
//	msg := MapError(err)
//	// msg.Code == "FILE006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
