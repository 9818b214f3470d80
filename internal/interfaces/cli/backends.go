package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliador-ubl/internal/application/ports"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/cache"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/filesystem"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/messaging"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/postgres"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/storage"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
)

// backends implementaciones elegidas por configuración para ingest.
type backends struct {
	indexes   repository.DedupIndexFactory
	blobs     repository.BlobStore
	publisher ports.RecordPublisher
	closers   []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *backends, err error) {
	b := &backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	switch cfg.Storage.DedupBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		b.indexes = postgres.NewDedupIndexFactory(pool, log)
	case config.BackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.indexes = cache.NewRedisDedupIndexFactory(client, cfg.Redis.KeyPrefix)
	case config.BackendFile:
		b.indexes = filesystem.NewDedupIndexFactory(cfg.Storage.Root, log)
	default:
		return nil, fmt.Errorf("backend de deduplicación %q no soportado", cfg.Storage.DedupBackend)
	}

	switch cfg.Storage.BlobBackend {
	case config.BackendS3:
		store, err := storage.NewS3BlobStore(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		b.blobs = store
	case config.BackendFile:
		b.blobs = filesystem.NewBlobStore(cfg.Storage.Root)
	default:
		return nil, fmt.Errorf("backend de adjuntos %q no soportado", cfg.Storage.BlobBackend)
	}

	if cfg.Storage.Publisher == config.BackendKafka {
		pub, err := messaging.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pub.Close)
		b.publisher = pub
	}

	log.Debug().
		Str("dedup", cfg.Storage.DedupBackend).
		Str("blobs", cfg.Storage.BlobBackend).
		Str("publisher", cfg.Storage.Publisher).
		Msg("backends listos")
	return b, nil
}
