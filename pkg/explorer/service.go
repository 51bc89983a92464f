package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/statsbudsjett/statsbudsjett/pkg/dataref"
	"github.com/statsbudsjett/statsbudsjett/pkg/drilldown"
	"github.com/statsbudsjett/statsbudsjett/pkg/keyfigure"
	"github.com/statsbudsjett/statsbudsjett/pkg/numfmt"
	"github.com/statsbudsjett/statsbudsjett/pkg/publishing"
)

var (
	ErrUnknownSide     = errors.New("unknown budget side")
	ErrAreaNotFound    = errors.New("program area not found")
	ErrPathNotResolved = errors.New("path does not resolve to a number")
	ErrNotPublished    = errors.New("budget year is not published")
)

// YearStatusReader reports the workflow status of a budget year.
type YearStatusReader interface {
	GetByYear(ctx context.Context, year int) (publishing.FiscalYear, error)
}

// FigureReader lists the stored key figures of a budget year.
type FigureReader interface {
	ListForYear(ctx context.Context, year int) ([]keyfigure.StoredFigure, error)
}

type ResolvedValue struct {
	Path      string
	Value     float64
	Formatted string
}

// DrilldownView is the navigator state after replaying a step list.
type DrilldownView struct {
	State       drilldown.State
	Depth       int
	Applied     int
	Breadcrumbs []drilldown.Breadcrumb
	Children    []drilldown.Child
}

// Service answers the read-only questions of the public budget explorer
// against immutable snapshots. Numbers are served for every snapshot on disk;
// editorial content only once its year is published.
type Service interface {
	Resolve(ctx context.Context, year int, path string) (ResolvedValue, error)
	Chart(ctx context.Context, year int) (aggregate.Chart, error)
	Area(ctx context.Context, year int, side budget.Side, number int) (*budget.ProgramArea, error)
	Drilldown(ctx context.Context, year int, side budget.Side, steps []drilldown.Step) (DrilldownView, error)
	KeyFigures(ctx context.Context, year int) (keyfigure.RenderedBlock, error)
}

type ServiceImpl struct {
	repo        budget.Repository
	years       YearStatusReader
	figures     FigureReader
	expenditure aggregate.Config
	revenue     aggregate.Config
}

func NewService(repo budget.Repository, years YearStatusReader, figures FigureReader, expenditure, revenue aggregate.Config) *ServiceImpl {
	return &ServiceImpl{
		repo:        repo,
		years:       years,
		figures:     figures,
		expenditure: expenditure,
		revenue:     revenue,
	}
}

func (s *ServiceImpl) Resolve(ctx context.Context, year int, path string) (ResolvedValue, error) {
	data, err := s.repo.Load(ctx, year)
	if err != nil {
		return ResolvedValue{}, err
	}
	v, ok := dataref.Resolve(path, data)
	if !ok {
		return ResolvedValue{}, fmt.Errorf("%w: %q", ErrPathNotResolved, path)
	}
	return ResolvedValue{Path: path, Value: v, Formatted: numfmt.Amount(v)}, nil
}

func (s *ServiceImpl) Chart(ctx context.Context, year int) (aggregate.Chart, error) {
	data, err := s.repo.Load(ctx, year)
	if err != nil {
		return aggregate.Chart{}, err
	}
	return aggregate.Segments(data, s.expenditure, s.revenue), nil
}

func (s *ServiceImpl) Area(ctx context.Context, year int, side budget.Side, number int) (*budget.ProgramArea, error) {
	budgetSide, err := s.side(ctx, year, side)
	if err != nil {
		return nil, err
	}
	area, ok := budgetSide.Area(number)
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", ErrAreaNotFound, side, number)
	}
	return area, nil
}

func (s *ServiceImpl) Drilldown(ctx context.Context, year int, side budget.Side, steps []drilldown.Step) (DrilldownView, error) {
	budgetSide, err := s.side(ctx, year, side)
	if err != nil {
		return DrilldownView{}, err
	}
	nav, applied := drilldown.New(budgetSide, aggregate.Aggregate(*budgetSide, s.config(side))).Replay(steps)
	return DrilldownView{
		State:       nav.State(),
		Depth:       nav.Depth(),
		Applied:     applied,
		Breadcrumbs: nav.Breadcrumbs(),
		Children:    nav.Children(),
	}, nil
}

// KeyFigures renders the stored figures of a published year, or the default
// figures when editors have stored none.
func (s *ServiceImpl) KeyFigures(ctx context.Context, year int) (keyfigure.RenderedBlock, error) {
	if err := s.requirePublished(ctx, year); err != nil {
		return keyfigure.RenderedBlock{}, err
	}
	data, err := s.repo.Load(ctx, year)
	if err != nil {
		return keyfigure.RenderedBlock{}, err
	}
	stored, err := s.figures.ListForYear(ctx, year)
	if err != nil {
		return keyfigure.RenderedBlock{}, fmt.Errorf("failed to list key figures for %d: %w", year, err)
	}
	block := keyfigure.DefaultBlock()
	if len(stored) > 0 {
		block.Figures = keyfigure.FiguresOf(stored)
	}
	return block.Render(data), nil
}

func (s *ServiceImpl) requirePublished(ctx context.Context, year int) error {
	fiscalYear, err := s.years.GetByYear(ctx, year)
	if errors.Is(err, publishing.ErrYearNotFound) {
		return fmt.Errorf("%w: %d", ErrNotPublished, year)
	} else if err != nil {
		return fmt.Errorf("failed to get status of %d: %w", year, err)
	}
	if fiscalYear.Status != publishing.StatusPublished {
		return fmt.Errorf("%w: %d is %s", ErrNotPublished, year, fiscalYear.Status)
	}
	return nil
}

func (s *ServiceImpl) side(ctx context.Context, year int, side budget.Side) (*budget.BudgetSide, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	data, err := s.repo.Load(ctx, year)
	if err != nil {
		return nil, err
	}
	return data.Side(side), nil
}

func (s *ServiceImpl) config(side budget.Side) aggregate.Config {
	if side == budget.SideRevenue {
		return s.revenue
	}
	return s.expenditure
}
