package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/event_bus"
)

const (
	statusPublished = "publisert"
	actionSchedule  = "planlagt"
)

type Publisher interface {
	Publish(ctx context.Context, msg PublicationMessage) error
}

// Evicter drops a cached budget year.
type Evicter interface {
	Evict(year int)
}

// Notifier reacts to committed status changes that publish or unpublish a
// fiscal year. It evicts the cached snapshot and, with a publisher, announces
// the change. Without a publisher it only logs.
type Notifier struct {
	publisher Publisher
	cache     Evicter
}

func NewNotifier(publisher Publisher, cache Evicter) *Notifier {
	return &Notifier{publisher: publisher, cache: cache}
}

func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.FiscalYearStatusChangedType, n.handle)
}

func (n *Notifier) handle(e event_bus.EventT[event_bus.FiscalYearStatusChanged]) error {
	change := e.Data
	if change.Action == actionSchedule {
		log.Infof("fiscal year %d scheduled for publication at %v", change.Year, change.ScheduledPublishAt)
		return nil
	}
	if change.To != statusPublished && change.From != statusPublished {
		return nil
	}

	if n.cache != nil {
		n.cache.Evict(change.Year)
	}

	msg := PublicationMessage{
		FiscalYearId: change.FiscalYearId,
		Year:         change.Year,
		Status:       change.To,
		Previous:     change.From,
		Automatic:    change.Automatic,
		ChangedAt:    change.ChangedAt,
	}
	if n.publisher == nil {
		log.Infof("fiscal year %d is now %s, pages need a rebuild", msg.Year, msg.Status)
		return nil
	}
	return n.publisher.Publish(e.Context(), msg)
}
