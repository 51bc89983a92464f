package aggregate

import (
	"fmt"
	"slices"
	"sort"

	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
)

// GroupingRule claims program areas for one display category. A CatchAll rule
// claims every area no explicit rule claimed. An Exclude rule claims areas to
// leave them out of the chart.
type GroupingRule struct {
	ID       string
	Name     string
	Areas    []int
	CatchAll bool
	Exclude  bool
}

type Config struct {
	Rules   []GroupingRule
	Palette []string
	// TwoStepThreshold is the number of source areas above which a category
	// drills down through an area picker first.
	TwoStepThreshold int
}

// DisplayCategory is one bar segment of the landing page chart.
type DisplayCategory struct {
	ID          string               `json:"id"`
	Name        string               `json:"navn"`
	Amount      int64                `json:"belop"`
	Color       string               `json:"farge"`
	SourceAreas []int                `json:"omr_gruppe"`
	TwoStep     bool                 `json:"to_trinn"`
	Change      *budget.ChangeRecord `json:"endring_fra_saldert"`
}

const defaultTwoStepThreshold = 1

type group struct {
	id, name string
	areas    []*budget.ProgramArea
}

// Aggregate rolls the program areas of one budget side into display categories
// sorted by amount, largest first.
func Aggregate(side budget.BudgetSide, cfg Config) []DisplayCategory {
	threshold := cfg.TwoStepThreshold
	if threshold <= 0 {
		threshold = defaultTwoStepThreshold
	}

	claimedBy := map[int]int{}
	catchAll := -1
	for i, rule := range cfg.Rules {
		if rule.CatchAll {
			if catchAll < 0 {
				catchAll = i
			}
			continue
		}
		for _, n := range rule.Areas {
			if _, claimed := claimedBy[n]; !claimed {
				claimedBy[n] = i
			}
		}
	}

	groups := make([]*group, len(cfg.Rules))
	var singletons []*group
	for i := range side.Areas {
		area := &side.Areas[i]
		ruleIndex, claimed := claimedBy[area.Number]
		if !claimed && catchAll >= 0 {
			ruleIndex, claimed = catchAll, true
		}
		if !claimed {
			singletons = append(singletons, &group{
				id:    fmt.Sprintf("omr-%d", area.Number),
				name:  area.Name,
				areas: []*budget.ProgramArea{area},
			})
			continue
		}
		rule := cfg.Rules[ruleIndex]
		if rule.Exclude {
			continue
		}
		if groups[ruleIndex] == nil {
			groups[ruleIndex] = &group{id: rule.ID, name: rule.Name}
		}
		groups[ruleIndex].areas = append(groups[ruleIndex].areas, area)
	}

	categories := make([]DisplayCategory, 0, len(cfg.Rules)+len(singletons))
	for _, g := range append(groups, singletons...) {
		if g == nil || len(g.areas) == 0 {
			continue
		}
		categories = append(categories, g.category(threshold))
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].SourceAreas[0] < categories[j].SourceAreas[0]
	})
	for i := range categories {
		categories[i].Color = colorAt(cfg.Palette, i)
	}
	return categories
}

func (g *group) category(threshold int) DisplayCategory {
	var amount int64
	numbers := make([]int, 0, len(g.areas))
	parts := make([]budget.ChangePart, 0, len(g.areas))
	for _, area := range g.areas {
		amount += area.Total
		numbers = append(numbers, area.Number)
		parts = append(parts, budget.ChangePart{Amount: area.Total, Change: area.Change})
	}
	slices.Sort(numbers)
	numbers = slices.Compact(numbers)
	return DisplayCategory{
		ID:          g.id,
		Name:        g.name,
		Amount:      amount,
		SourceAreas: numbers,
		TwoStep:     len(numbers) > threshold,
		Change:      budget.AggregateChange(parts),
	}
}

// colorAt repeats the last palette colour once the palette runs out.
func colorAt(palette []string, i int) string {
	if len(palette) == 0 {
		return ""
	}
	if i >= len(palette) {
		return palette[len(palette)-1]
	}
	return palette[i]
}
