package keyfigure

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu          sync.Mutex
	fiscalYears map[int]int
	figures     map[int]StoredFigure
	revisions   []Revision
	nextId      int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		fiscalYears: make(map[int]int),
		figures:     make(map[int]StoredFigure),
	}
}

// AddFiscalYear registers a fiscal year so figures may reference it.
func (s *RepositoryStub) AddFiscalYear(id int, year int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiscalYears[id] = year
}

func (s *RepositoryStub) Create(_ context.Context, figure StoredFigure, revision Revision) (StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fiscalYears[figure.FiscalYearId]; !ok {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFiscalYearNotFound, figure.FiscalYearId)
	}
	position := 0
	for _, existing := range s.figures {
		if existing.FiscalYearId == figure.FiscalYearId && existing.Position >= position {
			position = existing.Position + 1
		}
	}
	s.nextId++
	figure.Id = s.nextId
	figure.Position = position
	figure.UpdatedAt = figure.CreatedAt
	s.figures[figure.Id] = figure
	s.appendRevision(figure, revision)
	return figure, nil
}

func (s *RepositoryStub) Update(_ context.Context, figure StoredFigure, revision Revision) (StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.figures[figure.Id]
	if !ok {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, figure.Id)
	}
	existing.Figure = figure.Figure
	existing.UpdatedAt = figure.UpdatedAt
	s.figures[existing.Id] = existing
	s.appendRevision(existing, revision)
	return existing, nil
}

func (s *RepositoryStub) Delete(_ context.Context, id int, revision Revision) (StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.figures[id]
	if !ok {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, id)
	}
	delete(s.figures, id)
	s.appendRevision(existing, revision)
	return existing, nil
}

func (s *RepositoryStub) Get(_ context.Context, id int) (StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	figure, ok := s.figures[id]
	if !ok {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, id)
	}
	return figure, nil
}

func (s *RepositoryStub) ListForFiscalYear(_ context.Context, fiscalYearId int) ([]StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(f StoredFigure) bool { return f.FiscalYearId == fiscalYearId }), nil
}

func (s *RepositoryStub) ListForYear(_ context.Context, year int) ([]StoredFigure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(f StoredFigure) bool { return s.fiscalYears[f.FiscalYearId] == year }), nil
}

func (s *RepositoryStub) ListRevisions(_ context.Context, fiscalYearId int) ([]Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	revisions := make([]Revision, 0)
	for _, revision := range s.revisions {
		if revision.FiscalYearId == fiscalYearId {
			revisions = append(revisions, revision)
		}
	}
	return revisions, nil
}

func (s *RepositoryStub) list(keep func(StoredFigure) bool) []StoredFigure {
	figures := make([]StoredFigure, 0)
	for _, figure := range s.figures {
		if keep(figure) {
			figures = append(figures, figure)
		}
	}
	sort.Slice(figures, func(i, j int) bool {
		if figures[i].Position != figures[j].Position {
			return figures[i].Position < figures[j].Position
		}
		return figures[i].Id < figures[j].Id
	})
	return figures
}

func (s *RepositoryStub) appendRevision(figure StoredFigure, revision Revision) {
	revision.Id = len(s.revisions) + 1
	revision.KeyFigureId = figure.Id
	revision.FiscalYearId = figure.FiscalYearId
	revision.Snapshot = figure.Figure
	s.revisions = append(s.revisions, revision)
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiscalYears = make(map[int]int)
	s.figures = make(map[int]StoredFigure)
	s.revisions = nil
	s.nextId = 0
}
