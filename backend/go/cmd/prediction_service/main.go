package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction_relay/backend/go/internal/config"
	"prediction_relay/backend/go/internal/database/kafka"
	"prediction_relay/backend/go/internal/database/mongo"
	"prediction_relay/backend/go/internal/database/mysql"
	"prediction_relay/backend/go/internal/database/redis"
	"prediction_relay/backend/go/internal/prediction_service/api"
	"prediction_relay/backend/go/internal/prediction_service/oracle"
	"prediction_relay/backend/go/internal/prediction_service/service"
	"prediction_relay/backend/go/internal/prediction_service/store"
	relayhttp "prediction_relay/backend/go/pkg/http"
	"prediction_relay/backend/go/pkg/logger"
	"prediction_relay/backend/go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const defaultConfigPath = "backend/go/internal/config/config.yaml"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// a missing .env is normal outside local development
	_ = godotenv.Load()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	// Load configuration
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logLevel, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Invalid logger level: %v", err)
	}
	logger.Init(logLevel)

	serviceLogger := logger.New("PredictionService", "", "")

	httpClient, err := relayhttp.NewClient(cfg.Oracle)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to build oracle client")
	}
	predictionOracle := oracle.NewClient(cfg.Oracle.BaseURL, httpClient)

	records := store.NewHandle()

	var publisher service.EventPublisher
	var kafkaPublisher *kafka.PredictionPublisher
	if cfg.Databases.Kafka.Enabled {
		kafkaPublisher, err = kafka.NewPredictionPublisher(cfg.Databases.Kafka)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create Kafka publisher")
		}
		publisher = kafkaPublisher
	}

	predictionService := service.NewPredictionService(predictionOracle, records, publisher, serviceLogger, service.Options{
		ExpectedFeatures: cfg.Prediction.ExpectedFeatures,
		StrictTypes:      cfg.Prediction.StrictTypes,
		OracleTimeout:    config.Duration(cfg.Oracle.Timeout, 10*time.Second),
		WriteTimeout:     config.Duration(cfg.Store.WriteTimeout, 5*time.Second),
	})

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	apiHandler := api.NewAPI(predictionService, service.NewHealthReporter(records), serviceLogger)
	router := api.SetupRouter(apiHandler, serviceLogger)

	srv, err := relayhttp.NewServer(cfg.Server, router, relayhttp.WithReadTimeout(15*time.Second))
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to build HTTP server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// The server accepts requests while the store connects; until then writes are
	// skipped and history reports the store as unavailable.
	g.Go(func() error {
		connectCtx, cancel := context.WithTimeout(gctx, config.Duration(cfg.Store.ConnectTimeout, 10*time.Second))
		defer cancel()
		if err := records.Connect(connectCtx, connector(cfg)); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error(), Type: models.ErrorTypeStoreConnect}).
				Error("Prediction store connection failed")
			return nil
		}
		serviceLogger.WithPayload(map[string]interface{}{"driver": cfg.Store.Driver}).Info("Prediction store connected")
		return nil
	})

	g.Go(func() error {
		serviceLogger.Info("Starting HTTP server on " + srv.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		serviceLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server stopped with error")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka publisher")
		}
	}
	if err := records.Close(closeCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing prediction store")
	}
	closeDatabases(closeCtx, cfg.Store.Driver, serviceLogger)

	serviceLogger.Info("Server gracefully stopped")
}

// connector opens the backend selected by store.driver.
func connector(cfg *config.AppConfig) store.Connector {
	return func(ctx context.Context) (store.PredictionStore, error) {
		switch cfg.Store.Driver {
		case config.DriverMongo:
			client, err := mongo.GetClient(ctx, &cfg.Databases.MongoDB)
			if err != nil {
				return nil, err
			}
			s := store.NewMongoPredictionStore(client.Database(cfg.Databases.MongoDB.Database), cfg.Store.Collection)
			if err := s.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
			return s, nil
		case config.DriverRedis:
			client, err := redis.GetClient(ctx, &cfg.Databases.Redis)
			if err != nil {
				return nil, err
			}
			return store.NewRedisPredictionStore(client, cfg.Databases.Redis.Key), nil
		case config.DriverMySQL:
			db, err := mysql.GetDB(ctx, &cfg.Databases.MySQL)
			if err != nil {
				return nil, err
			}
			s := store.NewMySQLPredictionStore(db, cfg.Store.Collection)
			if err := s.Migrate(ctx); err != nil {
				return nil, err
			}
			return s, nil
		default:
			return store.NewMemoryPredictionStore(), nil
		}
	}
}

func closeDatabases(ctx context.Context, driver string, l *logger.Logger) {
	var err error
	switch driver {
	case config.DriverMongo:
		err = mongo.Close(ctx)
	case config.DriverRedis:
		err = redis.Close()
	case config.DriverMySQL:
		err = mysql.Close()
	}
	if err != nil {
		l.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error disconnecting from database")
	}
}
