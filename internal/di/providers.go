package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"redshare/internal/activity"
	"redshare/internal/comment"
	"redshare/internal/common"
	"redshare/internal/config"
	"redshare/internal/dbmongo"
	"redshare/internal/dbmysql"
	"redshare/internal/feed"
	"redshare/internal/gallery"
	"redshare/internal/gormstore"
	"redshare/internal/health"
	"redshare/internal/interaction"
	"redshare/internal/media"
	"redshare/internal/memstore"
	"redshare/internal/metrics"
	"redshare/internal/repository"
	"redshare/internal/seed"
	"redshare/internal/server"
	"redshare/internal/session"
	"redshare/internal/social"
	"redshare/internal/storage"
	"redshare/internal/tracing"
	"redshare/internal/user"
)

const cleanupTimeout = 10 * time.Second

// Application is everything cmd/redshare needs to run.
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	Router     http.Handler
	Health     *health.Server
	Dispatcher *activity.Dispatcher
	Seeder     *seed.Seeder
	Tracing    *tracing.Provider
}

var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideTracing,
	ProvideStore,
	wire.FieldsOf(new(*repository.Store), "Users", "Follows", "Galleries", "Comments"),
	ProvideTokenManager,
	ProvideRevoker,
	ProvideBlobStore,
	metrics.New,
	ProvideDispatcher,
	ProvidePublisher,
)

var ServiceSet = wire.NewSet(
	user.NewUserService,
	social.NewSocialService,
	gallery.NewCardBuilder,
	gallery.NewGalleryService,
	ProvideInteractionService,
	comment.NewCommentService,
	feed.NewFeedService,
	wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
	seed.NewSeeder,
)

var HTTPSet = wire.NewSet(
	user.NewHandler,
	social.NewHandler,
	gallery.NewHandler,
	interaction.NewHandler,
	comment.NewHandler,
	feed.NewFeedHandlers,
	ProvideUploadLimits,
	media.NewUploader,
	media.NewHTTPServer,
	wire.Struct(new(server.Handlers), "*"),
	wire.Struct(new(server.Auth), "*"),
	server.NewRouter,
	health.NewServer,
)

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideTracing(cfg *config.Config, logger *zap.Logger) (*tracing.Provider, func(), error) {
	tp, err := tracing.Init(context.Background(), cfg.Tracing, cfg.Server.Environment, logger)
	if err != nil {
		return nil, nil, err
	}
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}, nil
}

// ProvideStore picks the repository backend from DB_DRIVER.
func ProvideStore(cfg *config.Config, logger *zap.Logger) (*repository.Store, func(), error) {
	var store *repository.Store
	switch cfg.Database.Driver {
	case "", "memory":
		store = memstore.New().Repositories()
		logger.Info("using in-memory store")
	case "mysql", "sqlite":
		db, err := dbmysql.Open(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store = gormstore.New(db)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}, nil
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL(), cfg.Auth.Issuer)
}

// ProvideRevoker keeps revoked token ids in Redis when REDIS_ADDR is set.
func ProvideRevoker(cfg *config.Config, logger *zap.Logger) (common.TokenRevoker, func(), error) {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryRevoker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("token revocations stored in redis", zap.String("addr", cfg.Redis.Addr))
	return session.NewRedisRevoker(client), func() { _ = client.Close() }, nil
}

// ProvideBlobStore picks where uploads are kept from STORAGE_BACKEND.
func ProvideBlobStore(cfg *config.Config, logger *zap.Logger) (common.BlobStore, func(), error) {
	switch cfg.Storage.Backend {
	case "", "local":
		blobs, err := storage.NewLocalStorage(cfg.Storage.LocalDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("media stored on disk", zap.String("dir", cfg.Storage.LocalDir))
		return blobs, func() {}, nil

	case "gridfs":
		client, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("media stored in GridFS", zap.String("database", cfg.MongoDB.Database))
		return dbmongo.NewMediaStorage(client), func() {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()
			if err := client.Close(ctx); err != nil {
				logger.Warn("closing mongodb", zap.Error(err))
			}
		}, nil

	case "minio", "s3":
		blobs, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := blobs.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to prepare bucket %s: %w", cfg.MinIO.Bucket, err)
		}
		logger.Info("media stored in bucket", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.Bucket))
		return blobs, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// ProvideDispatcher starts the activity worker pool with its observers.
// The cleanup drains queued events before closing the Kafka writer.
func ProvideDispatcher(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*activity.Dispatcher, func()) {
	d := activity.NewDispatcher(cfg.Activity.Workers, cfg.Activity.ChannelBufferSize, logger.Named("activity"))
	d.Subscribe(activity.NewLogObserver(logger))
	d.Subscribe(activity.NewMetricsObserver(m.ActivityEvents))

	var kafkaObserver *activity.KafkaObserver
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaObserver = activity.NewKafkaObserver(activity.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		d.Subscribe(kafkaObserver)
		logger.Info("publishing activity to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	return d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := d.Shutdown(ctx); err != nil {
			logger.Warn("activity dispatcher shutdown", zap.Error(err))
		}
		if kafkaObserver != nil {
			if err := kafkaObserver.Close(); err != nil {
				logger.Warn("closing kafka writer", zap.Error(err))
			}
		}
	}
}

func ProvidePublisher(cfg *config.Config, d *activity.Dispatcher) activity.Publisher {
	if !cfg.Activity.Enabled {
		return activity.NopPublisher{}
	}
	return d
}

// Likes and saves share one repository type, so wire cannot tell them apart.
func ProvideInteractionService(store *repository.Store, galleries repository.GalleryRepository, publisher activity.Publisher) interaction.InteractionService {
	return interaction.NewInteractionService(galleries, store.Likes, store.Saves, publisher)
}

func ProvideUploadLimits(cfg *config.Config) media.Limits {
	return media.Limits{
		MaxFiles:     cfg.Storage.MaxFiles,
		MaxFileBytes: cfg.MaxUploadBytes(),
	}
}
