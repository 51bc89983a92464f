package drilldown

import (
	"sort"

	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
)

type Breadcrumb struct {
	Label     string `json:"label"`
	Level     Level  `json:"level"`
	Index     int    `json:"index"`
	Clickable bool   `json:"clickable"`
}

// Breadcrumbs has one entry per stack frame. Only the current frame is not
// clickable.
func (n Navigator) Breadcrumbs() []Breadcrumb {
	crumbs := make([]Breadcrumb, 0, len(n.stack))
	for i, node := range n.stack {
		crumbs = append(crumbs, Breadcrumb{
			Label:     node.Name(),
			Level:     node.Level,
			Index:     i,
			Clickable: i < len(n.stack)-1,
		})
	}
	return crumbs
}

// Child is one row of the list shown under the current frame.
type Child struct {
	Level     Level                `json:"level"`
	Number    int                  `json:"nr"`
	SubNumber int                  `json:"upost_nr,omitempty"`
	Name      string               `json:"navn"`
	Amount    int64                `json:"belop"`
	Change    *budget.ChangeRecord `json:"endring_fra_saldert"`
	New       bool                 `json:"ny,omitempty"`
	Group     budget.LineItemGroup `json:"postgruppe,omitempty"`
}

// Children lists the current frame's children, largest amount first and ties
// by number.
func (n Navigator) Children() []Child {
	top, ok := n.Current()
	if !ok {
		return nil
	}
	var children []Child
	switch top.Level {
	case LevelGroup:
		for _, area := range top.Candidates {
			children = append(children, Child{Level: LevelArea, Number: area.Number, Name: area.Name, Amount: area.Total, Change: area.Change})
		}
	case LevelArea:
		for _, c := range top.Area.Categories {
			children = append(children, Child{Level: LevelCategory, Number: c.Number, Name: c.Name, Amount: c.Total, Change: c.Change})
		}
	case LevelCategory:
		for _, c := range top.Category.Chapters {
			children = append(children, Child{Level: LevelChapter, Number: c.Number, Name: c.Name, Amount: c.Total, Change: c.Change})
		}
	case LevelChapter:
		for _, item := range top.Chapter.LineItems {
			children = append(children, Child{
				Level:     LevelLineItem,
				Number:    item.Number,
				SubNumber: item.SubNumber,
				Name:      item.Name,
				Amount:    item.Amount,
				Change:    item.Change,
				New:       item.IsNew(),
				Group:     item.Group,
			})
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.SubNumber < b.SubNumber
	})
	return children
}
