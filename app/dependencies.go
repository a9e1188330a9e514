package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/auth/jwtauth"
	"github.com/daemonXid/daemon-one/config"
	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/repositories"
	"github.com/daemonXid/daemon-one/repositories/postgres"
	"github.com/daemonXid/daemon-one/services/ai"
	"github.com/daemonXid/daemon-one/services/audit"
	"github.com/daemonXid/daemon-one/services/chat"
	"github.com/daemonXid/daemon-one/services/paper"
	"github.com/daemonXid/daemon-one/services/vision"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	ChatMessages repositories.ChatMessageRepository
	Papers       repositories.PaperRepository
	Media        repositories.MediaRepository
	AuditLogs    repositories.AuditRepository

	// AI provider façade
	Facade *ai.Facade

	// Domain services
	AuditService  *audit.Service
	ChatService   *chat.Service
	PaperService  *paper.Service
	VisionService *vision.Service

	// Auth
	Validator      *jwtauth.Validator
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initAI(cfg)

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.ChatMessages = repos.ChatMessages
	d.Papers = repos.Papers
	d.Media = repos.Media
	d.AuditLogs = repos.AuditLogs

	d.Logger.Info("repositories initialized")
}

// initAI initializes the provider selection façade. Construction of the
// underlying client is deferred to the first Client() call.
func (d *Dependencies) initAI(cfg *config.Config) {
	d.Facade = ai.NewFacade(cfg.AI, d.Logger)
	d.Logger.Info("ai façade initialized",
		zap.String("provider", d.Facade.ActiveProvider()))
}

// initAuth initializes the JWT validator and auth middleware
func (d *Dependencies) initAuth(cfg *config.Config) error {
	authCfg := cfg.Auth
	if authCfg.Secret == "" {
		// Config validation rejects this in production. In development an
		// ephemeral secret keeps the dev token endpoint usable; tokens do not
		// survive a restart.
		authCfg.Secret = uuid.NewString()
		d.Logger.Warn("AUTH_SECRET not set, using ephemeral signing secret")
	}

	validator, err := jwtauth.NewValidator(authCfg)
	if err != nil {
		return err
	}
	d.Validator = validator
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	return nil
}

// initServices initializes the domain services
func (d *Dependencies) initServices() {
	d.AuditService = audit.NewService(d.AuditLogs, d.Logger)
	d.ChatService = chat.NewService(
		d.Facade,
		chat.NewIndex(chat.DefaultKnowledgeBase()),
		d.ChatMessages,
		d.AuditService,
		d.Logger,
	)
	d.PaperService = paper.NewService(d.Facade, d.Papers, d.AuditService, d.Logger)
	d.VisionService = vision.NewService(d.Facade, d.Media, d.AuditService, d.Logger)

	d.Logger.Info("services initialized")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
