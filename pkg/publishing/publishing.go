package publishing

import "time"

// Status is the editorial status of a fiscal year. The values are persisted.
type Status string

const (
	StatusDraft         Status = "kladd"
	StatusPendingReview Status = "til_godkjenning"
	StatusApproved      Status = "godkjent"
	StatusPublished     Status = "publisert"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusPublished:
		return true
	}
	return false
}

type FiscalYear struct {
	Id     int
	Year   int
	Status Status
	// ScheduledPublishAt is set while an approved year waits for automatic
	// publication.
	ScheduledPublishAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Action string

const (
	ActionCreate       Action = "opprett"
	ActionStatusChange Action = "statusendring"
	ActionSchedule     Action = "planlagt"
)

// Revision is one immutable entry of a fiscal year's audit trail.
type Revision struct {
	Id           int
	FiscalYearId int
	Action       Action
	// FromStatus is empty for the revision that created the year.
	FromStatus Status
	ToStatus   Status
	// ActorId is nil for changes made by the scheduled trigger.
	ActorId            *int
	Timestamp          time.Time
	ScheduledPublishAt *time.Time
	Automatic          bool
}

// StatusChange is the compare-and-set a repository applies atomically with
// the revision append.
type StatusChange struct {
	FiscalYearId       int
	Expected           Status
	Next               Status
	ScheduledPublishAt *time.Time
	Revision           Revision
}
