// Package container wires the application graph: repositories over
// the database, the remote clients, the services and the sync engine,
// and finally the HTTP handler.
package container

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yofomoose/okdesk-bot/internal/adapters/http/router"
	"github.com/yofomoose/okdesk-bot/internal/adapters/telegram"
	"github.com/yofomoose/okdesk-bot/internal/core/sync"
	"github.com/yofomoose/okdesk-bot/internal/infra/integrations/okdesk"
	"github.com/yofomoose/okdesk-bot/internal/infra/repository"
	"github.com/yofomoose/okdesk-bot/internal/services"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/db"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

type Container struct {
	config   *config.Config
	logger   *logger.Logger
	database *db.DB

	repositories *repository.Repositories

	okdeskClient *okdesk.Client
	botClient    *telegram.Client

	resolverService *services.ResolverService
	ticketService   *services.TicketService
	notifierService *services.NotifierService

	syncEngine *sync.Engine

	handler http.Handler
}

type Config struct {
	AppConfig *config.Config
	Logger    *logger.Logger
	Database  *db.DB
}

func New(cfg *Config) (*Container, error) {
	c := &Container{
		config:   cfg.AppConfig,
		logger:   cfg.Logger,
		database: cfg.Database,
	}

	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	cfg.Logger.Info("Dependency injection container initialized")
	return c, nil
}

func (c *Container) initialize() error {
	timeout := time.Duration(c.config.HTTPTimeoutSeconds) * time.Second

	c.repositories = repository.NewRepositories(c.database.DB, c.logger)

	c.okdeskClient = okdesk.NewClient(
		c.config.OkdeskAPIURL,
		c.config.OkdeskAPIToken,
		c.config.DirectoryScanLimit,
		timeout,
		c.logger,
	)
	c.botClient = telegram.NewClient(
		c.config.BotAPIURL,
		c.config.BotToken,
		timeout,
		c.logger,
	)

	c.resolverService = services.NewResolverService(
		c.repositories.User,
		c.okdeskClient,
		c.logger,
	)
	c.notifierService = services.NewNotifierService(
		c.config.Status,
		c.botClient,
		c.repositories.Ticket,
		c.logger,
	)
	c.ticketService = services.NewTicketService(
		c.config,
		c.repositories.User,
		c.repositories.Ticket,
		c.repositories.Comment,
		c.resolverService,
		c.okdeskClient,
		c.logger,
	)

	c.syncEngine = sync.NewEngine(
		c.config.Status,
		c.repositories.Ticket,
		c.repositories.Comment,
		c.repositories.User,
		c.notifierService,
		c.logger,
	)

	c.handler = router.SetupRoutes(c.config, c.logger, c.database, c.syncEngine)

	return nil
}

func (c *Container) Handler() http.Handler {
	return c.handler
}

func (c *Container) TicketService() *services.TicketService {
	return c.ticketService
}

func (c *Container) ResolverService() *services.ResolverService {
	return c.resolverService
}

func (c *Container) NotifierService() *services.NotifierService {
	return c.notifierService
}

func (c *Container) SyncEngine() *sync.Engine {
	return c.syncEngine
}
