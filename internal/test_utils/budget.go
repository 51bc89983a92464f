package test_utils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/stretchr/testify/require"
)

// FixtureYear is the budget year shipped in testdata.
const FixtureYear = 2025

// TestdataDir returns the absolute path of the repository testdata directory.
func TestdataDir(t *testing.T) string {
	t.Helper()
	projectRoot, err := findProjectRoot()
	require.NoError(t, err)
	return filepath.Join(projectRoot, "testdata")
}

// LoadBudgetYear decodes a fresh copy of the fixture year, safe to modify.
func LoadBudgetYear(t *testing.T) *budget.BudgetYear {
	t.Helper()
	year, err := budget.NewFileRepository(TestdataDir(t)).Load(context.Background(), FixtureYear)
	require.NoError(t, err)
	return year
}
