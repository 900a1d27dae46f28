// Package authz holds the two access gates every service composes: a
// declarative operation -> required-role table and an imperative record
// ownership predicate. Keeping the role table here, instead of scattering
// role checks through the services, means one place answers "who may do
// what".
package authz

import (
	"github.com/eduraio/qanda-api/internal/domain/user"
)

// Principal is the authenticated actor an operation runs as.
type Principal struct {
	ID    string
	Email string
	Role  string
}

func (p Principal) IsOrganizer() bool {
	return p.Role == user.RoleOrganizer
}

func (p Principal) IsParticipant() bool {
	return p.Role == user.RoleParticipant
}

type Operation string

const (
	OpQuestionCreate      Operation = "questions.create"
	OpQuestionUpdate      Operation = "questions.update"
	OpQuestionDelete      Operation = "questions.delete"
	OpQuestionListAnswers Operation = "questions.list_answers"
)

// requiredRoles is the full role-gate table. An operation not listed here
// is open to any authenticated principal.
var requiredRoles = map[Operation]string{
	OpQuestionCreate:      user.RoleOrganizer,
	OpQuestionUpdate:      user.RoleOrganizer,
	OpQuestionDelete:      user.RoleOrganizer,
	OpQuestionListAnswers: user.RoleOrganizer,
}

// ForbiddenError is an authenticated-but-disallowed outcome. Reason is the
// human-readable rule that was violated and goes to the caller verbatim.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// RequiredRole reports the role an operation declares, if any.
func RequiredRole(op Operation) (string, bool) {
	role, ok := requiredRoles[op]
	return role, ok
}

// RequireRole is the single role-gate check. It runs before any side
// effect; a mismatch means the operation never proceeds.
func RequireRole(p Principal, op Operation) error {
	required, ok := requiredRoles[op]
	if !ok {
		return nil
	}

	if p.Role != required {
		return Forbidden(roleReason(required))
	}

	return nil
}

func roleReason(required string) string {
	switch required {
	case user.RoleOrganizer:
		return "Organizer role required"
	default:
		return required + " role required"
	}
}

// IsOwner compares a record's owning-user reference with the acting
// principal. Which struct field holds the reference is the caller's
// business; this predicate only does the comparison.
func IsOwner(ownerID, callerID string) bool {
	return ownerID != "" && ownerID == callerID
}

// RequireOwner fails with the given reason unless the principal owns the
// record. Callers confirm existence first so a missing record surfaces as
// NotFound, never as Forbidden.
func RequireOwner(ownerID, callerID, reason string) error {
	if !IsOwner(ownerID, callerID) {
		return Forbidden(reason)
	}
	return nil
}
