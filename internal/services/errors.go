// Package services implements the decision-making core: command dispatch,
// moderation heuristics, and the paid-entitlement lifecycle. This file
// defines the error taxonomy shared by all three.
//
// Expected failures (permission gates, bad arguments, invalid licenses) are
// ordinary control flow: they travel as *CommandError values carrying a
// machine-readable kind and a user-facing message, never as panics. The
// dispatcher classifies anything else as an internal fault.
package services

import "errors"

// ErrorKind labels a failed dispatch attempt in the audit log and in the
// response envelope.
type ErrorKind string

const (
	// KindValidation marks malformed or missing arguments. Reported to the
	// caller, not treated as a system fault.
	KindValidation ErrorKind = "validation"

	// KindPermission marks a failed role gate.
	KindPermission ErrorKind = "permission-denied"

	// KindBanned marks a short-circuit on the actor's global ban flag.
	KindBanned ErrorKind = "banned"

	// KindGroupBanned marks a short-circuit on the group's ban list.
	KindGroupBanned ErrorKind = "group-banned"

	// KindNotFound marks a reference to an unknown user, group, or license
	// by an administrative operation.
	KindNotFound ErrorKind = "not-found"

	// KindLicenseInvalid covers bad codes, already-activated codes, and
	// codes past their redemption deadline.
	KindLicenseInvalid ErrorKind = "license-invalid"

	// KindInternal marks unexpected store failures.
	KindInternal ErrorKind = "internal"
)

// CommandError is an expected failure with a stable kind and a message safe
// to show to the caller.
type CommandError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string { return e.Message }

// NewCommandError builds a CommandError.
func NewCommandError(kind ErrorKind, msg string) *CommandError {
	return &CommandError{Kind: kind, Message: msg}
}

// KindOf classifies an error into its audit-log kind. Unknown errors are
// internal faults.
func KindOf(err error) ErrorKind {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// Service-level sentinel errors.
var (
	// ErrUserNotFound indicates the referenced user has never been seen.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound indicates the referenced group has never been seen.
	ErrGroupNotFound = errors.New("group not found")

	// ErrInvalidLicenseType is returned when a generation request names an
	// unknown plan.
	ErrInvalidLicenseType = errors.New("invalid license type")
)
