package publishing

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/clock"
	"github.com/statsbudsjett/statsbudsjett/internal/event_bus"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

const (
	minYear = 1900
	maxYear = 2999
)

type Service interface {
	CreateYear(ctx context.Context, year int) (FiscalYear, error)
	GetYear(ctx context.Context, id int) (FiscalYear, error)
	ListYears(ctx context.Context) ([]FiscalYear, error)
	History(ctx context.Context, id int) ([]Revision, error)
	Transition(ctx context.Context, id int, expected, requested Status, scheduledPublishAt *time.Time) (FiscalYear, error)
	// PublishDue publishes every approved year whose schedule has passed and
	// returns the years it published.
	PublishDue(ctx context.Context) ([]FiscalYear, error)
}

type ServiceImpl struct {
	repo     Repository
	clock    clock.Clock
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, clock clock.Clock, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		clock:    clock,
		eventBus: eventBus,
	}
}

func (s *ServiceImpl) CreateYear(ctx context.Context, year int) (FiscalYear, error) {
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return FiscalYear{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !actor.Role.AtLeast(user.RoleEditor) {
		return FiscalYear{}, fmt.Errorf("%w: %s may not create fiscal years", ErrForbidden, actor.Role)
	}
	if year < minYear || year > maxYear {
		return FiscalYear{}, fmt.Errorf("%w: year %d out of range", ErrInvalidRequest, year)
	}

	now := s.clock.Now()
	created, err := s.repo.CreateYear(ctx,
		FiscalYear{Year: year, Status: StatusDraft, CreatedAt: now},
		Revision{
			Action:    ActionCreate,
			ToStatus:  StatusDraft,
			ActorId:   &actor.Id,
			Timestamp: now,
		},
	)
	if err != nil {
		return FiscalYear{}, err
	}
	log.Infof("fiscal year %d created by user %d", year, actor.Id)
	return created, nil
}

func (s *ServiceImpl) GetYear(ctx context.Context, id int) (FiscalYear, error) {
	if _, err := user.CurrentUser(ctx); err != nil {
		return FiscalYear{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetYear(ctx, id)
}

func (s *ServiceImpl) ListYears(ctx context.Context) ([]FiscalYear, error) {
	if _, err := user.CurrentUser(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListYears(ctx)
}

func (s *ServiceImpl) History(ctx context.Context, id int) ([]Revision, error) {
	if _, err := s.GetYear(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRevisions(ctx, id)
}

func (s *ServiceImpl) Transition(ctx context.Context, id int, expected, requested Status, scheduledPublishAt *time.Time) (FiscalYear, error) {
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return FiscalYear{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !expected.Valid() || !requested.Valid() {
		return FiscalYear{}, fmt.Errorf("%w: unknown status", ErrInvalidRequest)
	}

	current, err := s.repo.GetYear(ctx, id)
	if err != nil {
		return FiscalYear{}, err
	}
	if current.Status != expected {
		return FiscalYear{}, fmt.Errorf("%w: fiscal year %d is %s, not %s", ErrConcurrentModification, id, current.Status, expected)
	}
	if _, err := ApplyTransition(current.Status, requested, actor.Role); err != nil {
		return FiscalYear{}, err
	}
	if scheduledPublishAt != nil && requested != StatusPublished {
		return FiscalYear{}, fmt.Errorf("%w: only publication can be scheduled", ErrInvalidRequest)
	}

	return s.commit(ctx, current, requested, scheduledPublishAt, &actor.Id, false)
}

func (s *ServiceImpl) PublishDue(ctx context.Context) ([]FiscalYear, error) {
	due, err := s.repo.ListDue(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	published := make([]FiscalYear, 0, len(due))
	var errs []error
	for _, year := range due {
		updated, err := s.commit(ctx, year, StatusPublished, nil, nil, true)
		if errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrYearNotFound) {
			log.Warnf("skipping scheduled publication of fiscal year %d: %v", year.Year, err)
			continue
		} else if err != nil {
			errs = append(errs, fmt.Errorf("fiscal year %d: %w", year.Year, err))
			continue
		}
		log.Infof("fiscal year %d published on schedule", updated.Year)
		published = append(published, updated)
	}
	return published, errors.Join(errs...)
}

// commit persists a validated transition. An approved year asked to publish
// at a future instant keeps its status and stores the schedule instead.
func (s *ServiceImpl) commit(ctx context.Context, current FiscalYear, requested Status, scheduledPublishAt *time.Time, actorId *int, automatic bool) (FiscalYear, error) {
	now := s.clock.Now()
	next := requested
	action := ActionStatusChange
	var schedule *time.Time
	if requested == StatusPublished && scheduledPublishAt != nil && scheduledPublishAt.After(now) {
		next = current.Status
		action = ActionSchedule
		at := scheduledPublishAt.UTC()
		schedule = &at
	}
	// the automatic publication records the schedule it fulfilled
	revisionSchedule := schedule
	if automatic {
		revisionSchedule = current.ScheduledPublishAt
	}

	updated, err := s.repo.ApplyTransition(ctx, StatusChange{
		FiscalYearId:       current.Id,
		Expected:           current.Status,
		Next:               next,
		ScheduledPublishAt: schedule,
		Revision: Revision{
			Action:             action,
			FromStatus:         current.Status,
			ToStatus:           requested,
			ActorId:            actorId,
			Timestamp:          now,
			ScheduledPublishAt: revisionSchedule,
			Automatic:          automatic,
		},
	})
	if err != nil {
		return FiscalYear{}, err
	}

	s.publishChange(ctx, updated, current.Status, requested, action, actorId, automatic, now)
	return updated, nil
}

func (s *ServiceImpl) publishChange(ctx context.Context, year FiscalYear, from, to Status, action Action, actorId *int, automatic bool, changedAt time.Time) {
	if s.eventBus == nil {
		return
	}
	event := event_bus.NewEvent(ctx, event_bus.FiscalYearStatusChangedType, event_bus.FiscalYearStatusChanged{
		FiscalYearId:       year.Id,
		Year:               year.Year,
		From:               string(from),
		To:                 string(to),
		Action:             string(action),
		ActorId:            actorId,
		Automatic:          automatic,
		ScheduledPublishAt: year.ScheduledPublishAt,
		ChangedAt:          changedAt,
	})
	if err := s.eventBus.Publish(event); err != nil {
		log.Errorf("status change of fiscal year %d committed but notification failed: %v", year.Year, err)
	}
}
