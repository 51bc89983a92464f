// Command validate checks budget snapshots for internal consistency: every
// total equals the sum of its children and the fund transfer balances the
// budget.
//
//	validate -data ./testdata 2024 2025
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"golang.org/x/sync/errgroup"
)

func main() {
	dir := flag.String("data", "./testdata", "snapshot directory")
	flag.Usage = usage
	flag.Parse()

	years, err := parseYears(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	results, err := validate(context.Background(), budget.NewFileRepository(*dir), years)
	if err != nil {
		log.Fatal(err)
	}

	failed := false
	for i, violations := range results {
		if len(violations) == 0 {
			log.Infof("%d: ok", years[i])
			continue
		}
		failed = true
		for _, v := range violations {
			log.Errorf("%d: %v", years[i], v)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: validate [-data dir] year...")
	flag.PrintDefaults()
}

func parseYears(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New("no years given")
	}
	years := make([]int, 0, len(args))
	for _, arg := range args {
		year, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", arg)
		}
		years = append(years, year)
	}
	return years, nil
}

// validate loads the years concurrently and returns the violations per year,
// in the order of years. A year that cannot be loaded fails the whole run.
func validate(ctx context.Context, repo budget.Repository, years []int) ([][]error, error) {
	results := make([][]error, len(years))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, year := range years {
		g.Go(func() error {
			data, err := repo.Load(ctx, year)
			if err != nil {
				return fmt.Errorf("load %d: %w", year, err)
			}
			results[i] = budget.CheckInvariants(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
