// Package drilldown implements the navigation stack behind the drill-down
// panel: from a chart category down through program area, category and
// chapter to the line item table.
//
// Navigator is a value. Every transition returns a new Navigator and reports
// whether it was allowed; a rejected transition returns the receiver unchanged.
package drilldown

import (
	"slices"
	"sort"

	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
)

type State string

const (
	Closed     State = "closed"
	SingleArea State = "single_area"
	MultiArea  State = "multi_area"
)

type Level string

const (
	LevelGroup    Level = "gruppe"
	LevelArea     Level = "omraade"
	LevelCategory Level = "kategori"
	LevelChapter  Level = "kapittel"
	LevelLineItem Level = "post"
)

// Node is one frame of the stack. Exactly one of the pointer fields matching
// Level is set; all of them point into the immutable budget snapshot.
type Node struct {
	Level      Level
	Group      *aggregate.DisplayCategory
	Candidates []*budget.ProgramArea
	Area       *budget.ProgramArea
	Category   *budget.ProgramCategory
	Chapter    *budget.Chapter
}

func (n Node) Name() string {
	switch n.Level {
	case LevelGroup:
		return n.Group.Name
	case LevelArea:
		return n.Area.Name
	case LevelCategory:
		return n.Category.Name
	case LevelChapter:
		return n.Chapter.Name
	}
	return ""
}

// Number is the area, category or chapter number. Groups have none.
func (n Node) Number() int {
	switch n.Level {
	case LevelArea:
		return n.Area.Number
	case LevelCategory:
		return n.Category.Number
	case LevelChapter:
		return n.Chapter.Number
	}
	return 0
}

func (n Node) Amount() int64 {
	switch n.Level {
	case LevelGroup:
		return n.Group.Amount
	case LevelArea:
		return n.Area.Total
	case LevelCategory:
		return n.Category.Total
	case LevelChapter:
		return n.Chapter.Total
	}
	return 0
}

func (n Node) Change() *budget.ChangeRecord {
	switch n.Level {
	case LevelGroup:
		return n.Group.Change
	case LevelArea:
		return n.Area.Change
	case LevelCategory:
		return n.Category.Change
	case LevelChapter:
		return n.Chapter.Change
	}
	return nil
}

type Navigator struct {
	side       *budget.BudgetSide
	categories []aggregate.DisplayCategory
	stack      []Node
}

// New returns a closed navigator over one budget side and the display
// categories aggregated from it.
func New(side *budget.BudgetSide, categories []aggregate.DisplayCategory) Navigator {
	return Navigator{side: side, categories: categories}
}

func (n Navigator) State() State {
	if len(n.stack) == 0 {
		return Closed
	}
	if n.stack[len(n.stack)-1].Level == LevelGroup {
		return MultiArea
	}
	return SingleArea
}

func (n Navigator) Depth() int {
	return len(n.stack)
}

// Current returns the top of the stack.
func (n Navigator) Current() (Node, bool) {
	if len(n.stack) == 0 {
		return Node{}, false
	}
	return n.stack[len(n.stack)-1], true
}

// Stack returns a copy of the frames, bottom first.
func (n Navigator) Stack() []Node {
	return slices.Clone(n.stack)
}

func (n Navigator) push(node Node) Navigator {
	next := n
	next.stack = append(slices.Clone(n.stack), node)
	return next
}

// Open starts a drill-down from a chart category, replacing any open one.
// A category backed by a single area opens that area; otherwise the panel
// asks for an area first.
func (n Navigator) Open(categoryID string) (Navigator, bool) {
	var category *aggregate.DisplayCategory
	for i := range n.categories {
		if n.categories[i].ID == categoryID {
			category = &n.categories[i]
			break
		}
	}
	if category == nil || n.side == nil {
		return n, false
	}

	var present []*budget.ProgramArea
	for _, number := range category.SourceAreas {
		if area, ok := n.side.Area(number); ok {
			present = append(present, area)
		}
	}
	if len(present) == 0 {
		return n, false
	}

	closed := n.Close()
	if len(category.SourceAreas) == 1 {
		return closed.push(Node{Level: LevelArea, Area: present[0]}), true
	}
	sort.SliceStable(present, func(i, j int) bool {
		if present[i].Total != present[j].Total {
			return present[i].Total > present[j].Total
		}
		return present[i].Number < present[j].Number
	})
	return closed.push(Node{Level: LevelGroup, Group: category, Candidates: present}), true
}

// SelectArea picks one of the candidate areas of an open group.
func (n Navigator) SelectArea(areaNumber int) (Navigator, bool) {
	top, ok := n.Current()
	if !ok || top.Level != LevelGroup {
		return n, false
	}
	for _, candidate := range top.Candidates {
		if candidate.Number == areaNumber {
			return n.push(Node{Level: LevelArea, Area: candidate}), true
		}
	}
	return n, false
}

// Descend moves from an area to one of its categories or from a category to
// one of its chapters. Line items are the terminal table of a chapter.
func (n Navigator) Descend(childNumber int) (Navigator, bool) {
	top, ok := n.Current()
	if !ok {
		return n, false
	}
	switch top.Level {
	case LevelArea:
		if category, found := top.Area.Category(childNumber); found {
			return n.push(Node{Level: LevelCategory, Category: category}), true
		}
	case LevelCategory:
		if chapter, found := top.Category.Chapter(childNumber); found {
			return n.push(Node{Level: LevelChapter, Chapter: chapter}), true
		}
	}
	return n, false
}

// NavigateTo truncates the stack so that the frame at index becomes the top.
func (n Navigator) NavigateTo(index int) (Navigator, bool) {
	if index < 0 || index >= len(n.stack) {
		return n, false
	}
	next := n
	next.stack = slices.Clone(n.stack[:index+1])
	return next, true
}

func (n Navigator) Close() Navigator {
	next := n
	next.stack = nil
	return next
}
