package publishing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RepositoryStub is an in-memory Repository with the same compare-and-set
// semantics as the database implementation.
type RepositoryStub struct {
	mu        sync.Mutex
	years     map[int]FiscalYear
	revisions []Revision
	nextId    int
	nextRevId int
	// FailRevisionAppend makes the next revision append fail with this error.
	FailRevisionAppend error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		years: make(map[int]FiscalYear),
	}
}

func (s *RepositoryStub) CreateYear(_ context.Context, year FiscalYear, revision Revision) (FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.years {
		if existing.Year == year.Year {
			return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearExists, year.Year)
		}
	}
	s.nextId++
	year.Id = s.nextId
	year.UpdatedAt = year.CreatedAt
	revision.FiscalYearId = year.Id
	if err := s.appendRevision(revision); err != nil {
		s.nextId--
		return FiscalYear{}, err
	}
	s.years[year.Id] = year
	return year, nil
}

func (s *RepositoryStub) GetYear(_ context.Context, id int) (FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	year, ok := s.years[id]
	if !ok {
		return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearNotFound, id)
	}
	return year, nil
}

func (s *RepositoryStub) GetByYear(_ context.Context, year int) (FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fiscalYear := range s.years {
		if fiscalYear.Year == year {
			return fiscalYear, nil
		}
	}
	return FiscalYear{}, fmt.Errorf("%w: year %d", ErrYearNotFound, year)
}

func (s *RepositoryStub) ListYears(_ context.Context) ([]FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	years := make([]FiscalYear, 0, len(s.years))
	for _, year := range s.years {
		years = append(years, year)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year > years[j].Year })
	return years, nil
}

func (s *RepositoryStub) ListDue(_ context.Context, now time.Time) ([]FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]FiscalYear, 0)
	for _, year := range s.years {
		if year.Status == StatusApproved && year.ScheduledPublishAt != nil && !year.ScheduledPublishAt.After(now) {
			due = append(due, year)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledPublishAt.Equal(*due[j].ScheduledPublishAt) {
			return due[i].ScheduledPublishAt.Before(*due[j].ScheduledPublishAt)
		}
		return due[i].Id < due[j].Id
	})
	return due, nil
}

func (s *RepositoryStub) ApplyTransition(_ context.Context, change StatusChange) (FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year, ok := s.years[change.FiscalYearId]
	if !ok {
		return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearNotFound, change.FiscalYearId)
	}
	if year.Status != change.Expected {
		return FiscalYear{}, fmt.Errorf("%w: fiscal year %d is no longer %s", ErrConcurrentModification, year.Id, change.Expected)
	}

	revision := change.Revision
	revision.FiscalYearId = year.Id
	if err := s.appendRevision(revision); err != nil {
		return FiscalYear{}, err
	}
	year.Status = change.Next
	year.ScheduledPublishAt = change.ScheduledPublishAt
	year.UpdatedAt = change.Revision.Timestamp
	s.years[year.Id] = year
	return year, nil
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

// SetStatus overwrites a stored year's status without a revision, as a
// concurrent writer or a test fixture would.
func (s *RepositoryStub) SetStatus(id int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	year := s.years[id]
	year.Status = status
	s.years[id] = year
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years = make(map[int]FiscalYear)
	s.revisions = nil
	s.nextId = 0
	s.nextRevId = 0
	s.FailRevisionAppend = nil
}

func (s *RepositoryStub) appendRevision(revision Revision) error {
	if s.FailRevisionAppend != nil {
		err := s.FailRevisionAppend
		s.FailRevisionAppend = nil
		return err
	}
	s.nextRevId++
	revision.Id = s.nextRevId
	s.revisions = append(s.revisions, revision)
	return nil
}
