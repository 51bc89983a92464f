package publishing

import (
	"errors"
	"fmt"

	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

var (
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrForbidden              = errors.New("role may not perform transition")
	ErrConcurrentModification = errors.New("fiscal year was modified concurrently")
	ErrYearNotFound           = errors.New("fiscal year not found")
	ErrYearExists             = errors.New("fiscal year already exists")
	ErrInvalidRequest         = errors.New("invalid request")
)

// TransitionError describes a rejected transition. Err is ErrInvalidTransition
// or ErrForbidden.
type TransitionError struct {
	From Status
	To   Status
	Role user.Role
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s -> %s as %q: %v", e.From, e.To, e.Role, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// minimumRole lists every allowed edge with the least privileged role that may
// take it.
var minimumRole = map[Status]map[Status]user.Role{
	StatusDraft: {
		StatusPendingReview: user.RoleEditor,
	},
	StatusPendingReview: {
		StatusApproved: user.RoleApprover,
		StatusDraft:    user.RoleApprover,
	},
	StatusApproved: {
		StatusPublished: user.RoleApprover,
		StatusDraft:     user.RoleAdministrator,
	},
	StatusPublished: {
		StatusDraft: user.RoleAdministrator,
	},
}

// ApplyTransition validates moving from current to requested as role and
// returns the new status.
func ApplyTransition(current, requested Status, role user.Role) (Status, error) {
	min, ok := minimumRole[current][requested]
	if !ok {
		return current, &TransitionError{From: current, To: requested, Role: role, Err: ErrInvalidTransition}
	}
	if !role.AtLeast(min) {
		return current, &TransitionError{From: current, To: requested, Role: role, Err: ErrForbidden}
	}
	return requested, nil
}

// AllowedTransitions returns the statuses role may move a year to from current.
func AllowedTransitions(current Status, role user.Role) []Status {
	var allowed []Status
	for _, next := range []Status{StatusDraft, StatusPendingReview, StatusApproved, StatusPublished} {
		if min, ok := minimumRole[current][next]; ok && role.AtLeast(min) {
			allowed = append(allowed, next)
		}
	}
	return allowed
}
