package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/config"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/http"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/ws"
	"github.com/gdugdh24/geomatch-backend/internal/event"
	"github.com/gdugdh24/geomatch-backend/internal/infrastructure/database"
	"github.com/gdugdh24/geomatch-backend/internal/infrastructure/mq"
	"github.com/gdugdh24/geomatch-backend/internal/infrastructure/server"
	mongorepo "github.com/gdugdh24/geomatch-backend/internal/repository/mongo"
	"github.com/gdugdh24/geomatch-backend/internal/repository/postgres"
	redisrepo "github.com/gdugdh24/geomatch-backend/internal/repository/redis"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/auth"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/chat"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/connection"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/discovery"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/profile"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/subscription"
)

const closeTimeout = 5 * time.Second

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
	MQ     *mq.RabbitMQ
	Server *server.Server
}

// NewContainer creates a new dependency injection container. Clients opened
// before a failure are closed before returning.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// Initialize database
	c.DB, err = database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Database.MigrateOnBoot {
		if err = database.Migrate(c.DB, cfg.Database.DBName); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database migrations applied")
	}

	// Initialize Redis
	c.Redis, err = database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize MongoDB
	c.Mongo, err = database.NewMongoClient(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongo: %w", err)
	}
	messageRepo, err := mongorepo.NewMessageRepository(ctx, c.Mongo.Database(cfg.Mongo.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize message store: %w", err)
	}

	// Events are optional; without a broker they are dropped
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.AMQP.URL != "" {
		c.MQ, err = mq.Connect(cfg.AMQP.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		emitter, err := event.NewEmitter(c.MQ, cfg.AMQP.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event emitter: %w", err)
		}
		publisher = emitter
	} else {
		logger.Warn("AMQP_URL not set, domain events are disabled")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(c.DB)
	connRepo := postgres.NewConnectionRepository(c.DB)
	skipRepo := postgres.NewSkipRepository(c.DB)
	presenceRepo := redisrepo.NewPresenceRepository(c.Redis)
	denylist := redisrepo.NewTokenDenylist(c.Redis)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(
		userRepo,
		denylist,
		cfg.JWT.AccessSecret,
		time.Duration(cfg.JWT.AccessExpiryMin)*time.Minute,
		logger.Named("auth"),
	)

	profileUseCase := profile.NewProfileUseCase(userRepo, logger.Named("profile"))

	discoveryUseCase := discovery.NewDiscoveryUseCase(
		userRepo,
		connRepo,
		skipRepo,
		logger.Named("discovery"),
		discovery.WithDefaultMaxKm(cfg.Discovery.DefaultMaxKm),
	)

	connectionUseCase := connection.NewConnectionUseCase(
		connRepo,
		skipRepo,
		userRepo,
		publisher,
		logger.Named("connection"),
	)

	hub := ws.NewHub(logger.Named("ws"))
	chatUseCase := chat.NewChatUseCase(
		messageRepo,
		connRepo,
		presenceRepo,
		hub,
		publisher,
		logger.Named("chat"),
	)

	subscriptionUseCase := subscription.NewSubscriptionUseCase(userRepo, logger.Named("subscription"))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)
	connectionHandler := handler.NewConnectionHandler(connectionUseCase)
	chatHandler := handler.NewChatHandler(chatUseCase)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionUseCase)
	wsHandler := ws.NewHandler(hub, chatUseCase, cfg.Server.AllowedOrigins, logger.Named("ws"))

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	// Initialize router
	router := http.NewRouter(
		authHandler,
		profileHandler,
		discoveryHandler,
		connectionHandler,
		chatHandler,
		subscriptionHandler,
		wsHandler,
		authMiddleware,
		logger,
	)

	// Initialize server
	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	var firstErr error
	record := func(name string, err error) {
		if err == nil {
			return
		}
		c.Logger.Error("failed to close "+name, zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s: %w", name, err)
		}
	}

	if c.MQ != nil {
		record("rabbitmq", c.MQ.Close())
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		record("mongo", c.Mongo.Disconnect(ctx))
		cancel()
	}

	// Close Redis
	if c.Redis != nil {
		record("redis", c.Redis.Close())
	}

	// Close database
	if c.DB != nil {
		record("database", c.DB.Close())
	}

	return firstErr
}
