package container

import (
	"context"
	"fmt"

	"spareparts/catalog/internal/batch"
	"spareparts/catalog/internal/client"
	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/proxy"
	"spareparts/catalog/internal/queue"
	"spareparts/catalog/internal/repository"
	"spareparts/catalog/internal/service"
	"spareparts/catalog/internal/state"
	"spareparts/catalog/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Service *service.Service

	priceLists client.PriceListClient
	storefront client.StorefrontClient
	db         *pgxpool.Pool
	redis      *redis.Client
}

// New creates a new container. Publishing components are only connected when
// enabled in config.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxies := proxy.NewSupplier(ctx, cfg.PriceList.Proxies, cfg.PriceList.ProbeURL)
	container.priceLists = client.NewPriceListClient(cfg.PriceList, proxies)

	deps := service.Dependencies{
		Store:      repository.NewCatalogFileStore(cfg.Catalog.Path),
		PriceLists: container.priceLists,
	}

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx,
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		container.db = db
		deps.Parts = repository.NewPartRepository(db)
		log.Info("✅ Postgres mirror enabled")
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		container.redis = rdb

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		deps.StateManager = state.NewRedisStateManager(rdb, cfg.Redis.KeyPrefix)
		deps.Events = queue.NewRedisPublisher(rdb, cfg.Redis)
	}

	if cfg.Storefront.Enabled {
		container.storefront = client.NewStorefrontClient(cfg.Storefront)
		deps.Storefront = container.storefront
		log.Infof("✅ Storefront revalidation enabled for %s", cfg.Storefront.BaseURL)
	}

	if cfg.Storage.Enabled {
		artifacts, err := storage.NewArtifactStore(cfg.Storage)
		if err != nil {
			container.Close()
			return nil, err
		}
		deps.Artifacts = artifacts
		log.Infof("✅ Catalog upload enabled to bucket %s", cfg.Storage.Bucket)
	}

	container.Service = service.NewService(cfg, deps)
	return container, nil
}

// Build runs the given batch files, or every batch in the configured directory
// when none are given.
func (c *Container) Build(ctx context.Context, files []string) (*service.Report, error) {
	var (
		batches []*batch.Batch
		err     error
	)
	if len(files) == 0 {
		batches, err = batch.LoadDir(c.Config.Catalog.BatchesDir)
		if err != nil {
			return nil, err
		}
	} else {
		for _, file := range files {
			b, err := batch.LoadFile(file)
			if err != nil {
				return nil, err
			}
			batches = append(batches, b)
		}
	}

	log.Infof("📦 Running %d batches", len(batches))
	return c.Service.Build(ctx, batches)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.priceLists != nil {
		_ = c.priceLists.Close()
	}
	if c.storefront != nil {
		_ = c.storefront.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}

	log.Debug("Container shut down successfully")
	return nil
}
