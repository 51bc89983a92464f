package keyfigure

import (
	"errors"
	"time"
)

var (
	ErrFigureNotFound     = errors.New("key figure not found")
	ErrFiscalYearNotFound = errors.New("fiscal year not found")
	ErrInvalidFigure      = errors.New("invalid key figure")
	ErrForbidden          = errors.New("operation not permitted for role")
)

// StoredFigure is a key figure an editor keeps for one fiscal year. Figures
// render in Position order.
type StoredFigure struct {
	Id           int
	FiscalYearId int
	Position     int
	Figure
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Action string

const (
	ActionCreate Action = "opprett"
	ActionUpdate Action = "endre"
	ActionDelete Action = "slett"
)

// Revision records one write to a key figure together with the figure as it
// was written, or as it was when deleted.
type Revision struct {
	Id           int
	KeyFigureId  int
	FiscalYearId int
	Action       Action
	Snapshot     Figure
	ActorId      *int
	Timestamp    time.Time
}

// FiguresOf returns the figures of stored in order.
func FiguresOf(stored []StoredFigure) []Figure {
	figures := make([]Figure, 0, len(stored))
	for _, s := range stored {
		figures = append(figures, s.Figure)
	}
	return figures
}
