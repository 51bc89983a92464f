package keyfigure

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/clock"
	"github.com/statsbudsjett/statsbudsjett/pkg/dataref"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

type Service interface {
	List(ctx context.Context, fiscalYearId int) ([]StoredFigure, error)
	Create(ctx context.Context, fiscalYearId int, figure Figure) (StoredFigure, error)
	Update(ctx context.Context, id int, figure Figure) (StoredFigure, error)
	Delete(ctx context.Context, id int) error
	History(ctx context.Context, fiscalYearId int) ([]Revision, error)
}

type ServiceImpl struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clock clock.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:  repo,
		clock: clock,
	}
}

func (s *ServiceImpl) List(ctx context.Context, fiscalYearId int) ([]StoredFigure, error) {
	if _, err := user.CurrentUser(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForFiscalYear(ctx, fiscalYearId)
}

func (s *ServiceImpl) Create(ctx context.Context, fiscalYearId int, figure Figure) (StoredFigure, error) {
	actor, err := s.writer(ctx)
	if err != nil {
		return StoredFigure{}, err
	}
	figure, err = normalize(figure)
	if err != nil {
		return StoredFigure{}, err
	}

	now := s.clock.Now()
	created, err := s.repo.Create(ctx,
		StoredFigure{FiscalYearId: fiscalYearId, Figure: figure, CreatedAt: now},
		Revision{Action: ActionCreate, ActorId: &actor.Id, Timestamp: now},
	)
	if err != nil {
		return StoredFigure{}, err
	}
	log.Infof("key figure %d created for fiscal year %d by user %d", created.Id, fiscalYearId, actor.Id)
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id int, figure Figure) (StoredFigure, error) {
	actor, err := s.writer(ctx)
	if err != nil {
		return StoredFigure{}, err
	}
	figure, err = normalize(figure)
	if err != nil {
		return StoredFigure{}, err
	}

	now := s.clock.Now()
	updated, err := s.repo.Update(ctx,
		StoredFigure{Id: id, Figure: figure, UpdatedAt: now},
		Revision{Action: ActionUpdate, ActorId: &actor.Id, Timestamp: now},
	)
	if err != nil {
		return StoredFigure{}, err
	}
	log.Infof("key figure %d updated by user %d", id, actor.Id)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	actor, err := s.writer(ctx)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, id, Revision{Action: ActionDelete, ActorId: &actor.Id, Timestamp: s.clock.Now()})
	if err != nil {
		return err
	}
	log.Infof("key figure %d deleted by user %d", id, actor.Id)
	return nil
}

func (s *ServiceImpl) History(ctx context.Context, fiscalYearId int) ([]Revision, error) {
	if _, err := user.CurrentUser(ctx); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListRevisions(ctx, fiscalYearId)
}

// writer returns the current user when they may edit key figures. Approvers
// review years but do not write editorial content.
func (s *ServiceImpl) writer(ctx context.Context) (user.User, error) {
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if actor.Role != user.RoleAdministrator && actor.Role != user.RoleEditor {
		return user.User{}, fmt.Errorf("%w: %s may not edit key figures", ErrForbidden, actor.Role)
	}
	return actor, nil
}

func normalize(figure Figure) (Figure, error) {
	figure.Label = strings.TrimSpace(figure.Label)
	figure.Value = strings.TrimSpace(figure.Value)
	figure.Ref = strings.TrimSpace(figure.Ref)
	figure.Unit = strings.TrimSpace(figure.Unit)

	if figure.Label == "" {
		return Figure{}, fmt.Errorf("%w: label is required", ErrInvalidFigure)
	}
	if figure.Value == "" && figure.Ref == "" {
		return Figure{}, fmt.Errorf("%w: either a value or a data reference is required", ErrInvalidFigure)
	}
	if figure.Ref != "" {
		if _, err := dataref.Parse(figure.Ref); err != nil {
			return Figure{}, fmt.Errorf("%w: %v", ErrInvalidFigure, err)
		}
	}
	if !figure.Indicator.Valid() {
		return Figure{}, fmt.Errorf("%w: unknown indicator %q", ErrInvalidFigure, figure.Indicator)
	}
	return figure, nil
}
