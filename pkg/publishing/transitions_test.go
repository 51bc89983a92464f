package publishing

import (
	"testing"

	"github.com/statsbudsjett/statsbudsjett/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransition(t *testing.T) {
	allowed := []struct {
		from Status
		to   Status
		role user.Role
	}{
		{StatusDraft, StatusPendingReview, user.RoleEditor},
		{StatusPendingReview, StatusApproved, user.RoleApprover},
		{StatusPendingReview, StatusDraft, user.RoleApprover},
		{StatusApproved, StatusPublished, user.RoleApprover},
		{StatusApproved, StatusDraft, user.RoleAdministrator},
		{StatusPublished, StatusDraft, user.RoleAdministrator},
	}

	t.Run("should allow every edge for its minimum role and administrators", func(t *testing.T) {
		for _, edge := range allowed {
			for _, role := range []user.Role{edge.role, user.RoleAdministrator} {
				next, err := ApplyTransition(edge.from, edge.to, role)
				require.NoError(t, err, "%s -> %s as %s", edge.from, edge.to, role)
				assert.Equal(t, edge.to, next)
			}
		}
	})

	t.Run("should forbid edges for roles below the minimum", func(t *testing.T) {
		cases := []struct {
			from Status
			to   Status
			role user.Role
		}{
			{StatusDraft, StatusPendingReview, user.RoleReader},
			{StatusPendingReview, StatusApproved, user.RoleEditor},
			{StatusPendingReview, StatusDraft, user.RoleEditor},
			{StatusApproved, StatusPublished, user.RoleEditor},
			{StatusApproved, StatusDraft, user.RoleApprover},
			{StatusPublished, StatusDraft, user.RoleApprover},
			{StatusDraft, StatusPendingReview, user.Role("gjest")},
		}
		for _, c := range cases {
			next, err := ApplyTransition(c.from, c.to, c.role)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrForbidden)
			assert.Equal(t, c.from, next)
			var transitionErr *TransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, c.role, transitionErr.Role)
		}
	})

	t.Run("should reject edges outside the table for every role", func(t *testing.T) {
		cases := [][2]Status{
			{StatusDraft, StatusApproved},
			{StatusDraft, StatusPublished},
			{StatusDraft, StatusDraft},
			{StatusPendingReview, StatusPublished},
			{StatusApproved, StatusApproved},
			{StatusApproved, StatusPendingReview},
			{StatusPublished, StatusApproved},
			{StatusPublished, StatusPublished},
		}
		for _, c := range cases {
			_, err := ApplyTransition(c[0], c[1], user.RoleAdministrator)

			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", c[0], c[1])
		}
	})
}

func TestAllowedTransitions(t *testing.T) {
	t.Run("should list the edges a role may take", func(t *testing.T) {
		assert.Equal(t, []Status{StatusDraft, StatusApproved}, AllowedTransitions(StatusPendingReview, user.RoleApprover))
		assert.Equal(t, []Status{StatusPublished}, AllowedTransitions(StatusApproved, user.RoleApprover))
		assert.Equal(t, []Status{StatusDraft, StatusPublished}, AllowedTransitions(StatusApproved, user.RoleAdministrator))
		assert.Empty(t, AllowedTransitions(StatusDraft, user.RoleReader))
	})
}
