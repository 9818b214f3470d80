// Package cache índice de deduplicación compartido en Redis: un hash por partición (campo = hash
// de contenido, valor = archivo). Varias instancias se coordinan con un bloqueo SET NX por partición.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
	"github.com/jhoicas/conciliador-ubl/pkg/config"
)

// DefaultKeyPrefix prefijo de las claves de partición.
const DefaultKeyPrefix = "conciliador:dedup:"

const (
	// LockTTL vida máxima del bloqueo de una partición: si el proceso muere, expira solo.
	LockTTL = 30 * time.Second
	// lockSuffix clave del bloqueo = prefijo + partición + lockSuffix.
	lockSuffix = ":lock"

	lockPollMin = 2 * time.Millisecond
	lockPollMax = 50 * time.Millisecond
)

// releaseScript borra el bloqueo solo si sigue siendo nuestro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var (
	_ repository.DedupIndexFactory = (*RedisDedupIndexFactory)(nil)
	_ repository.DedupIndex        = (*RedisDedupIndex)(nil)
)

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisDedupIndexFactory abre índices sobre un cliente compartido.
type RedisDedupIndexFactory struct {
	client    redis.Cmdable
	keyPrefix string
	lockTTL   time.Duration
}

// NewRedisDedupIndexFactory keyPrefix vacío usa DefaultKeyPrefix.
func NewRedisDedupIndexFactory(client redis.Cmdable, keyPrefix string) *RedisDedupIndexFactory {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisDedupIndexFactory{client: client, keyPrefix: keyPrefix, lockTTL: LockTTL}
}

// LockKey clave Redis del bloqueo de la partición.
func (f *RedisDedupIndexFactory) LockKey(partition string) string {
	return f.keyPrefix + strings.TrimSpace(partition) + lockSuffix
}

// Lock SET key token NX PX LockTTL, reintentando hasta obtenerlo o hasta que ctx termine.
// unlock borra la clave solo si el token coincide.
func (f *RedisDedupIndexFactory) Lock(ctx context.Context, partition string) (func(), error) {
	if strings.TrimSpace(partition) == "" {
		return nil, domain.ErrInvalidPartition
	}
	key := f.LockKey(partition)
	token := uuid.NewString()

	wait := lockPollMin
	for {
		ok, err := f.client.SetNX(ctx, key, token, f.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("dedup lock %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dedup lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		if wait *= 2; wait > lockPollMax {
			wait = lockPollMax
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			// Si falla, la clave expira con LockTTL.
			_ = releaseScript.Run(rctx, f.client, []string{key}, token).Err()
		})
	}, nil
}

// Open no consulta Redis: una clave inexistente es un índice vacío.
func (f *RedisDedupIndexFactory) Open(_ context.Context, partition string) (repository.DedupIndex, error) {
	partition = strings.TrimSpace(partition)
	if partition == "" {
		return nil, domain.ErrInvalidPartition
	}
	return &RedisDedupIndex{client: f.client, key: f.keyPrefix + partition}, nil
}

// RedisDedupIndex índice de una partición.
type RedisDedupIndex struct {
	client redis.Cmdable
	key    string
}

// Key clave Redis de la partición.
func (x *RedisDedupIndex) Key() string { return x.key }

// Lookup HGET key hash.
func (x *RedisDedupIndex) Lookup(ctx context.Context, hash string) (string, bool, error) {
	filename, err := x.client.HGet(ctx, x.key, hash).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dedup lookup %s %s: %w", x.key, hash, err)
	}
	return filename, true, nil
}

// Append HSETNX: la primera entrada de un hash gana.
func (x *RedisDedupIndex) Append(ctx context.Context, hash, filename string) error {
	if err := x.client.HSetNX(ctx, x.key, hash, filename).Err(); err != nil {
		return fmt.Errorf("dedup append %s %s: %w", x.key, hash, err)
	}
	return nil
}
