package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"surveycast/internal/cache"
	"surveycast/internal/config"
	"surveycast/internal/repository"
	"surveycast/internal/service"
	"surveycast/internal/transport/rest"
	"surveycast/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pingTimeout = 5 * time.Second

// App holds the wired server components
type App struct {
	Config  *config.Config
	Hub     *ws.Hub
	Auth    *service.AuthService
	Exports *service.ExportService
	Engine  *service.Engine
	Router  http.Handler

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects the optional backing stores and wires the engine. Without
// MONGO_URI exports stay in memory, without REDIS_URI so do correlations.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	exportRepo := repository.NewMemoryExportRepo()
	reportRepo := repository.NewMemoryReportRepo()
	if cfg.MongoURI != "" {
		db, err := a.connectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		exportRepo = repository.NewExportRepo(db)
		reportRepo = repository.NewReportRepo(db)
	} else {
		log.Println("Warning: MONGO_URI not set, exports are kept in memory")
	}

	var opts []service.Option
	if cfg.RedisURI != "" {
		rdb, err := a.connectRedis(ctx, cfg.RedisURI)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		opts = append(opts, service.WithCorrelationTable(cache.NewCorrelationCache(rdb, cfg.CorrelationTTL)))
	} else {
		log.Println("Warning: REDIS_URI not set, correlations are kept in memory")
	}

	a.Hub = ws.NewHub()
	a.Auth = service.NewAuthService(cfg.AdminIDs, cfg.JWTSecret)
	a.Exports = service.NewExportService(exportRepo, reportRepo, cfg.ExportFormat)
	a.Engine = service.NewEngine(a.Hub, a.Exports, opts...)
	a.Router = rest.NewRouter(&rest.Container{
		AuthService:   a.Auth,
		Engine:        a.Engine,
		ExportService: a.Exports,
		WSHub:         a.Hub,
	})
	return a, nil
}

func (a *App) connectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Println("Connected to MongoDB")

	a.mongoClient = client
	return client.Database(dbName), nil
}

func (a *App) connectRedis(ctx context.Context, uri string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("parse redis uri: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: uri}
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Println("Connected to Redis")

	a.redisClient = rdb
	return rdb, nil
}

// Close stops the engine and disconnects the stores
func (a *App) Close(ctx context.Context) {
	if a.Engine != nil {
		a.Engine.Close()
	}
	if a.redisClient != nil {
		a.redisClient.Close()
	}
	if a.mongoClient != nil {
		a.mongoClient.Disconnect(ctx)
	}
}
