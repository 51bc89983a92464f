package publishing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/statsbudsjett/statsbudsjett/internal/clock"
	"github.com/statsbudsjett/statsbudsjett/internal/event_bus"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewRepositoryStub()

var (
	testClock = &clock.FixedClock{}
	bus       *event_bus.EventBus
	events    []event_bus.FiscalYearStatusChanged
	service   *ServiceImpl
)

var (
	admin    = user.User{Id: 1, Uid: "admin", Name: "Admin", Role: user.RoleAdministrator}
	approver = user.User{Id: 2, Uid: "approver", Name: "Approver", Role: user.RoleApprover}
	editor   = user.User{Id: 3, Uid: "editor", Name: "Editor", Role: user.RoleEditor}
	reader   = user.User{Id: 4, Uid: "reader", Name: "Reader", Role: user.RoleReader}
)

func setup(t *testing.T) func() {
	testClock.SetNow(time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC))
	bus = event_bus.NewEventBus()
	events = nil
	event_bus.SubscribeTyped(bus, event_bus.FiscalYearStatusChangedType, func(e event_bus.EventT[event_bus.FiscalYearStatusChanged]) error {
		events = append(events, e.Data)
		return nil
	})
	service = NewService(repoStub, testClock, bus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func as(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

// yearIn creates a fiscal year and walks it to status.
func yearIn(t *testing.T, status Status) FiscalYear {
	t.Helper()
	year, err := service.CreateYear(as(editor), 2025)
	require.NoError(t, err)
	path := map[Status][]Status{
		StatusDraft:         nil,
		StatusPendingReview: {StatusPendingReview},
		StatusApproved:      {StatusPendingReview, StatusApproved},
		StatusPublished:     {StatusPendingReview, StatusApproved, StatusPublished},
	}
	for _, next := range path[status] {
		year, err = service.Transition(as(admin), year.Id, year.Status, next, nil)
		require.NoError(t, err)
	}
	events = nil
	return year
}

func TestService_CreateYear(t *testing.T) {
	t.Run("should create a draft with an opprett revision", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		year, err := service.CreateYear(as(editor), 2026)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, year.Status)
		assert.Equal(t, 2026, year.Year)
		revisions, err := service.History(as(reader), year.Id)
		require.NoError(t, err)
		require.Len(t, revisions, 1)
		assert.Equal(t, ActionCreate, revisions[0].Action)
		assert.Equal(t, Status(""), revisions[0].FromStatus)
		assert.Equal(t, StatusDraft, revisions[0].ToStatus)
		assert.Equal(t, &editor.Id, revisions[0].ActorId)
	})

	t.Run("should reject duplicate years", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.CreateYear(as(editor), 2026)
		require.NoError(t, err)

		// when
		_, err = service.CreateYear(as(editor), 2026)

		// then
		assert.ErrorIs(t, err, ErrYearExists)
	})

	t.Run("should forbid readers", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateYear(as(reader), 2026)

		// then
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("should require a user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateYear(context.Background(), 2026)

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("should reject implausible years", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateYear(as(editor), 25)

		// then
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestService_Transition(t *testing.T) {
	t.Run("should submit a draft for review and record the revision", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusDraft)

		// when
		updated, err := service.Transition(as(editor), year.Id, StatusDraft, StatusPendingReview, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusPendingReview, updated.Status)
		revisions, _ := repoStub.ListRevisions(context.Background(), year.Id)
		last := revisions[len(revisions)-1]
		assert.Equal(t, ActionStatusChange, last.Action)
		assert.Equal(t, StatusDraft, last.FromStatus)
		assert.Equal(t, StatusPendingReview, last.ToStatus)
		assert.Equal(t, &editor.Id, last.ActorId)
		assert.False(t, last.Automatic)
		assert.Equal(t, testClock.Now(), last.Timestamp)
		require.Len(t, events, 1)
		assert.Equal(t, "til_godkjenning", events[0].To)
		assert.Equal(t, 2025, events[0].Year)
	})

	t.Run("should reject a stale expected status as a concurrent modification", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusPendingReview)

		// when
		_, err := service.Transition(as(editor), year.Id, StatusDraft, StatusPendingReview, nil)

		// then
		assert.ErrorIs(t, err, ErrConcurrentModification)
		assert.Empty(t, events)
	})

	t.Run("should reject a forbidden role without changing anything", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusPendingReview)
		before, _ := repoStub.ListRevisions(context.Background(), year.Id)

		// when
		_, err := service.Transition(as(editor), year.Id, StatusPendingReview, StatusApproved, nil)

		// then
		assert.ErrorIs(t, err, ErrForbidden)
		stored, _ := repoStub.GetYear(context.Background(), year.Id)
		assert.Equal(t, StatusPendingReview, stored.Status)
		after, _ := repoStub.ListRevisions(context.Background(), year.Id)
		assert.Len(t, after, len(before))
	})

	t.Run("should reject edges outside the table", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusDraft)

		// when
		_, err := service.Transition(as(admin), year.Id, StatusDraft, StatusPublished, nil)

		// then
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("should return not found for unknown years", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Transition(as(admin), 99, StatusDraft, StatusPendingReview, nil)

		// then
		assert.ErrorIs(t, err, ErrYearNotFound)
	})

	t.Run("should keep the status when the revision append fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusDraft)
		repoStub.FailRevisionAppend = errors.New("disk full")

		// when
		_, err := service.Transition(as(editor), year.Id, StatusDraft, StatusPendingReview, nil)

		// then
		require.Error(t, err)
		stored, _ := repoStub.GetYear(context.Background(), year.Id)
		assert.Equal(t, StatusDraft, stored.Status)
		assert.Empty(t, events)
	})

	t.Run("should schedule a future publication and keep the year approved", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(48 * time.Hour)

		// when
		updated, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, updated.Status)
		require.NotNil(t, updated.ScheduledPublishAt)
		assert.True(t, at.Equal(*updated.ScheduledPublishAt))
		revisions, _ := repoStub.ListRevisions(context.Background(), year.Id)
		last := revisions[len(revisions)-1]
		assert.Equal(t, ActionSchedule, last.Action)
		assert.Equal(t, StatusPublished, last.ToStatus)
		require.Len(t, events, 1)
		assert.Equal(t, string(ActionSchedule), events[0].Action)
	})

	t.Run("should publish immediately when the schedule is in the past", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(-time.Hour)

		// when
		updated, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, updated.Status)
		assert.Nil(t, updated.ScheduledPublishAt)
	})

	t.Run("should clear the schedule when an approved year returns to draft", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(time.Hour)
		_, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)
		require.NoError(t, err)

		// when
		updated, err := service.Transition(as(admin), year.Id, StatusApproved, StatusDraft, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, updated.Status)
		assert.Nil(t, updated.ScheduledPublishAt)
	})

	t.Run("should reject a schedule on other transitions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusDraft)
		at := testClock.Now().Add(time.Hour)

		// when
		_, err := service.Transition(as(editor), year.Id, StatusDraft, StatusPendingReview, &at)

		// then
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("should let exactly one of two concurrent approvals succeed", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusPendingReview)
		var wg sync.WaitGroup
		results := make([]error, 2)

		// when
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = service.Transition(as(approver), year.Id, StatusPendingReview, StatusApproved, nil)
			}(i)
		}
		wg.Wait()

		// then
		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrConcurrentModification)
			}
		}
		assert.Equal(t, 1, succeeded)
		revisions, _ := repoStub.ListRevisions(context.Background(), year.Id)
		approvals := 0
		for _, r := range revisions {
			if r.ToStatus == StatusApproved {
				approvals++
			}
		}
		assert.Equal(t, 1, approvals)
	})

	t.Run("should detect a write between read and commit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusPendingReview)
		repo := &interleavingRepo{RepositoryStub: repoStub, before: func() { repoStub.SetStatus(year.Id, StatusDraft) }}
		service = NewService(repo, testClock, bus)

		// when
		_, err := service.Transition(as(approver), year.Id, StatusPendingReview, StatusApproved, nil)

		// then
		assert.ErrorIs(t, err, ErrConcurrentModification)
	})
}

// interleavingRepo runs before ahead of the compare-and-set.
type interleavingRepo struct {
	*RepositoryStub
	before func()
}

func (r *interleavingRepo) ApplyTransition(ctx context.Context, change StatusChange) (FiscalYear, error) {
	r.before()
	return r.RepositoryStub.ApplyTransition(ctx, change)
}

func TestService_PublishDue(t *testing.T) {
	t.Run("should publish due years automatically without an actor", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(time.Hour)
		_, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)
		require.NoError(t, err)
		events = nil
		testClock.Advance(2 * time.Hour)

		// when
		published, err := service.PublishDue(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, StatusPublished, published[0].Status)
		assert.Nil(t, published[0].ScheduledPublishAt)
		revisions, _ := repoStub.ListRevisions(context.Background(), year.Id)
		last := revisions[len(revisions)-1]
		assert.Nil(t, last.ActorId)
		assert.True(t, last.Automatic)
		assert.Equal(t, StatusApproved, last.FromStatus)
		assert.Equal(t, StatusPublished, last.ToStatus)
		assert.Equal(t, ActionStatusChange, last.Action)
		require.NotNil(t, last.ScheduledPublishAt)
		assert.True(t, at.Equal(*last.ScheduledPublishAt))
		require.Len(t, events, 1)
		assert.True(t, events[0].Automatic)
	})

	t.Run("should be a no-op when repeated", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(time.Minute)
		_, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)
		require.NoError(t, err)
		testClock.Advance(time.Hour)
		_, err = service.PublishDue(context.Background())
		require.NoError(t, err)
		before, _ := repoStub.ListRevisions(context.Background(), year.Id)

		// when
		published, err := service.PublishDue(context.Background())

		// then
		require.NoError(t, err)
		assert.Empty(t, published)
		after, _ := repoStub.ListRevisions(context.Background(), year.Id)
		assert.Len(t, after, len(before))
	})

	t.Run("should leave years scheduled in the future", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(24 * time.Hour)
		_, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)
		require.NoError(t, err)

		// when
		published, err := service.PublishDue(context.Background())

		// then
		require.NoError(t, err)
		assert.Empty(t, published)
		stored, _ := repoStub.GetYear(context.Background(), year.Id)
		assert.Equal(t, StatusApproved, stored.Status)
	})

	t.Run("should skip a year changed concurrently", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusApproved)
		at := testClock.Now().Add(time.Minute)
		_, err := service.Transition(as(approver), year.Id, StatusApproved, StatusPublished, &at)
		require.NoError(t, err)
		testClock.Advance(time.Hour)
		repo := &interleavingRepo{RepositoryStub: repoStub, before: func() { repoStub.SetStatus(year.Id, StatusDraft) }}
		service = NewService(repo, testClock, bus)

		// when
		published, err := service.PublishDue(context.Background())

		// then
		require.NoError(t, err)
		assert.Empty(t, published)
	})
}

func TestService_NotificationFailure(t *testing.T) {
	t.Run("should commit even when a subscriber fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		year := yearIn(t, StatusDraft)
		bus.Subscribe(event_bus.FiscalYearStatusChangedType, func(event_bus.Event) error {
			return errors.New("broker down")
		})

		// when
		updated, err := service.Transition(as(editor), year.Id, StatusDraft, StatusPendingReview, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusPendingReview, updated.Status)
	})
}
