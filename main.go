package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-hub/domain/model"
	"social-hub/domain/registry"
	"social-hub/domain/repository"
	"social-hub/infrastructure/cache"
	facebookclient "social-hub/infrastructure/clients/facebook"
	xclient "social-hub/infrastructure/clients/xcom"
	youtubeclient "social-hub/infrastructure/clients/youtube"
	"social-hub/infrastructure/configuration"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/objectstore"
	"social-hub/infrastructure/persistence"
	"social-hub/infrastructure/pubsub"
	"social-hub/infrastructure/realtime"
	"social-hub/infrastructure/servicebus"
	httpHandler "social-hub/interfaces/http"
	"social-hub/server"
	"social-hub/usecase"

	"github.com/gin-gonic/gin"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	userDb, userDbVendor, err := InitiateUserDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("User database initialization failed")
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("MongoDB initialization failed")
		os.Exit(1)
	}
	if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("MongoDB ping failed")
		os.Exit(1)
	}
	logger.GetLogger().Info("MongoDB connected successfully")

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - publish events to Google disabled")
		pubSubClient = nil
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - publish events to Azure disabled")
		azServiceBusClient = nil
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - connection lookups go straight to MongoDB")
		redisClient = nil
	}

	var mediaStore repository.IMediaStore
	if bucket := configuration.C.Media.Bucket; bucket != "" {
		mediaStore, err = objectstore.NewGCSMediaStore(ctx, bucket)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("GCS media store not available - media objects will be orphaned on delete")
			mediaStore = nil
		}
	}

	// Repository wiring follows the vendor the database picker chose.
	var userRepository repository.IUser
	switch userDbVendor {
	case "mssql":
		userRepository = persistence.NewUserRepositoryMSSQL(userDb)
	case "mysql":
		userRepository = persistence.NewUserRepositoryMySQL(userDb)
	default:
		userRepository = persistence.NewUserRepository(userDb)
	}

	var connRepository repository.IConnection
	connRepository = persistence.NewConnectionRepository(mongoDb, configuration.C.Database.Mongo.Name)
	connRepository = cache.NewConnectionCache(redisClient, connRepository)
	contentRepository := persistence.NewContentRepository(mongoDb, configuration.C.Database.Mongo.Name)

	reg, err := registry.New(platformConfigs())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Platform registry initialization failed")
		os.Exit(1)
	}

	mediaURL := func(ref string) string {
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", configuration.C.Media.Bucket, ref)
	}
	adapters := map[string]repository.ISocialPlatform{}
	for _, cfg := range reg.All() {
		switch cfg.ID {
		case "youtube":
			adapters[cfg.ID] = youtubeclient.NewClient(cfg, mediaURL)
		case "facebook":
			adapters[cfg.ID] = facebookclient.NewClient(cfg, mediaURL)
		case "x":
			adapters[cfg.ID] = xclient.NewClient(cfg, mediaURL)
		}
	}

	userUsecase := usecase.NewUserUsecase(userRepository)
	connectUsecase := usecase.NewConnectUsecase(reg, adapters, connRepository, configuration.C.App.SecretKey)
	contentUsecase := usecase.NewContentUsecase(contentRepository, mediaStore)

	publishHub := realtime.NewPublishHub()
	publishUsecase := usecase.NewPublishUsecase(reg, adapters, connRepository, contentRepository).
		WithBroadcaster(publishHub.BroadcastResult)
	var publishEvents pubsub.IPublishEvents
	if pubSubClient != nil {
		publishEvents = pubsub.NewPublishEvents(pubSubClient, configuration.C.Pubsub.Topic)
	}
	var busEvents servicebus.IPublishEvents
	if azServiceBusClient != nil {
		busEvents = servicebus.NewPublishEvents(azServiceBusClient, configuration.C.ServiceBus.Queue)
	}
	publishUsecase = publishUsecase.WithEvents(publishEvents, busEvents)

	userHandler := httpHandler.NewUserHandler(userUsecase)
	healthHandler := httpHandler.NewHealthHandler()
	connectHandler := httpHandler.NewConnectHandler(connectUsecase)
	publishHandler := httpHandler.NewPublishHandler(publishUsecase)
	contentHandler := httpHandler.NewContentHandler(contentUsecase)

	router := server.InitiateRouter(
		userHandler,
		healthHandler,
		connectHandler,
		publishHandler,
		contentHandler,
		func(c *gin.Context) { publishHub.Serve(c) },
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// platformConfigs assembles the supported platforms from the adapter
// packages' endpoints and the configured OAuth client credentials.
func platformConfigs() []model.PlatformConfig {
	oauth := configuration.C.OAuth
	return []model.PlatformConfig{
		{
			ID:           "youtube",
			DisplayName:  "YouTube",
			ClientID:     oauth.YouTube.ClientID,
			ClientSecret: oauth.YouTube.ClientSecret,
			AuthURL:      youtubeclient.AuthorizeURL,
			Scopes:       youtubeclient.DefaultScopes,
			RedirectURL:  oauth.YouTube.RedirectURI,
		},
		{
			ID:           "facebook",
			DisplayName:  "Facebook",
			ClientID:     oauth.Facebook.ClientID,
			ClientSecret: oauth.Facebook.ClientSecret,
			AuthURL:      facebookclient.AuthorizeURL,
			Scopes:       facebookclient.DefaultScopes,
			RedirectURL:  oauth.Facebook.RedirectURI,
		},
		{
			ID:           "x",
			DisplayName:  "X",
			ClientID:     oauth.X.ClientID,
			ClientSecret: oauth.X.ClientSecret,
			AuthURL:      xclient.AuthorizeURL,
			Scopes:       xclient.DefaultScopes,
			RedirectURL:  oauth.X.RedirectURI,
		},
	}
}

// InitiateUserDatabase picks the SQL backend for the user/identity tables
// and reports which vendor it picked. Production runs MSSQL, local default
// is PostgreSQL; DB_VENDOR=mssql|mysql overrides.
func InitiateUserDatabase() (*sql.DB, string, error) {
	env := os.Getenv("ENV")
	vendor := os.Getenv("DB_VENDOR")
	if vendor == "" && (env == "production" || env == "prod") {
		vendor = "mssql"
	}
	switch vendor {
	case "mssql":
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, vendor, err
		}
		return mssql, vendor, nil
	case "mysql":
		db, err := persistence.NewNativeDb()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MySQL")
			return nil, vendor, err
		}
		return db, vendor, nil
	default:
		postgres, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
			return nil, "postgres", err
		}
		return postgres, "postgres", nil
	}
}
