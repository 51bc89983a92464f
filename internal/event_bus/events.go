package event_bus

import "time"

const FiscalYearStatusChangedType EventType = "fiscal_year.status.changed"

// FiscalYearStatusChanged is published after a status change of a fiscal year
// has been committed together with its revision.
type FiscalYearStatusChanged struct {
	FiscalYearId int
	Year         int
	From         string
	To           string
	Action       string
	ActorId      *int
	Automatic    bool
	// ScheduledPublishAt is set when the change schedules a future publication.
	ScheduledPublishAt *time.Time
	ChangedAt          time.Time
}
