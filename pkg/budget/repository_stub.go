package budget

import (
	"context"
	"fmt"
	"sync"
)

type RepositoryStub struct {
	mu    sync.Mutex
	years map[int]*BudgetYear
	loads int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{years: map[int]*BudgetYear{}}
}

func (s *RepositoryStub) Put(year *BudgetYear) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[year.Year] = year
}

func (s *RepositoryStub) Load(ctx context.Context, year int) (*BudgetYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	budgetYear, ok := s.years[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return budgetYear, nil
}

// Loads returns how many times Load was called.
func (s *RepositoryStub) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years = map[int]*BudgetYear{}
	s.loads = 0
}
