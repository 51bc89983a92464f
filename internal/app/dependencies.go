package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/auth"
	"github.com/statsbudsjett/statsbudsjett/internal/clock"
	"github.com/statsbudsjett/statsbudsjett/internal/config"
	"github.com/statsbudsjett/statsbudsjett/internal/event_bus"
	"github.com/statsbudsjett/statsbudsjett/internal/notify"
	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/statsbudsjett/statsbudsjett/pkg/explorer"
	"github.com/statsbudsjett/statsbudsjett/pkg/keyfigure"
	"github.com/statsbudsjett/statsbudsjett/pkg/publishing"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    clock.Clock
	EventBus *event_bus.EventBus

	AuthTokenValidator auth.TokenValidator
	RateLimiter        *ClientRateLimiter

	UserService user.Service
	UserHandler *user.Handler

	BudgetRepo      *budget.CachedRepository
	ExplorerService explorer.Service
	ExplorerHandler *explorer.Handler

	KeyFigureService keyfigure.Service
	KeyFigureHandler *keyfigure.Handler

	PublishingService publishing.Service
	PublishingHandler *publishing.Handler
	CronHandler       *publishing.CronHandler

	AmqpClient *notify.Client
	Notifier   *notify.Notifier
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.AuthTokenValidator = auth.NewTokenValidator(cfg.Auth.JwtSecret)
	deps.RateLimiter = NewClientRateLimiter(cfg.RateLimit.Rps, cfg.RateLimit.Burst)

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	publishingRepo := publishing.NewRepository(db)
	keyFigureRepo := keyfigure.NewRepository(db)

	deps.BudgetRepo = budget.NewCachedRepository(budget.NewFileRepository(cfg.Data.Dir), cfg.Data.CacheTTL)
	deps.ExplorerService = explorer.NewService(
		deps.BudgetRepo,
		publishingRepo,
		keyFigureRepo,
		chartConfig(cfg.Aggregation.Expenditure, aggregate.DefaultExpenditureConfig()),
		chartConfig(cfg.Aggregation.Revenue, aggregate.DefaultRevenueConfig()),
	)
	deps.ExplorerHandler = explorer.NewHandler(deps.ExplorerService, explorer.NewCsvChartRenderer())

	deps.KeyFigureService = keyfigure.NewService(keyFigureRepo, deps.Clock)
	deps.KeyFigureHandler = keyfigure.NewHandler(deps.KeyFigureService)

	deps.PublishingService = publishing.NewService(publishingRepo, deps.Clock, deps.EventBus)
	deps.PublishingHandler = publishing.NewHandler(deps.PublishingService)
	deps.CronHandler = publishing.NewCronHandler(deps.PublishingService, cfg.Cron.Secret)

	var publisher notify.Publisher
	if cfg.Amqp.Enabled {
		client, err := notify.NewClient(cfg.Amqp.Url, cfg.Amqp.Exchange, cfg.Amqp.RoutingKey)
		if err != nil {
			log.Warnf("Failed to connect to AMQP, publication changes will only be logged: %v", err)
		} else {
			deps.AmqpClient = client
			publisher = client
		}
	}
	deps.Notifier = notify.NewNotifier(publisher, deps.BudgetRepo)
	deps.Notifier.Subscribe(deps.EventBus)

	return deps
}

// chartConfig overlays configured grouping on the built-in one. Empty fields
// keep the built-in value.
func chartConfig(c config.Chart, fallback aggregate.Config) aggregate.Config {
	out := fallback
	if len(c.Rules) > 0 {
		out.Rules = make([]aggregate.GroupingRule, 0, len(c.Rules))
		for _, r := range c.Rules {
			out.Rules = append(out.Rules, aggregate.GroupingRule{
				ID:       r.Id,
				Name:     r.Name,
				Areas:    r.Areas,
				CatchAll: r.CatchAll,
				Exclude:  r.Exclude,
			})
		}
	}
	if len(c.Palette) > 0 {
		out.Palette = c.Palette
	}
	if c.TwoStepThreshold > 0 {
		out.TwoStepThreshold = c.TwoStepThreshold
	}
	return out
}
