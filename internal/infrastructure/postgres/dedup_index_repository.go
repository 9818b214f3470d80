package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
)

// DedupTable tabla del índice. Una fila por (partición, hash); nunca se borran filas.
const DedupTable = "attachment_dedup_index"

// schemaLockKey clave del advisory lock que serializa la creación del esquema entre procesos.
const schemaLockKey int64 = 0x636f6e63696c // "concil"

// partitionLockClass primera clave de pg_advisory_xact_lock(int, int) en los bloqueos de partición.
const partitionLockClass int32 = 0x636f6e63 // "conc"

var (
	_ repository.DedupIndexFactory = (*DedupIndexFactory)(nil)
	_ repository.DedupIndex        = (*DedupIndex)(nil)
)

// DedupIndexFactory índices de deduplicación guardados en PostgreSQL.
type DedupIndexFactory struct {
	db  DB
	now func() time.Time
	log zerolog.Logger

	mu   sync.Mutex
	held map[string]pgx.Tx // partición -> transacción que tiene su bloqueo
}

// NewDedupIndexFactory construye la fábrica. Llamar EnsureSchema antes del primer uso.
func NewDedupIndexFactory(db DB, log zerolog.Logger) *DedupIndexFactory {
	return &DedupIndexFactory{db: db, now: time.Now, log: log, held: make(map[string]pgx.Tx)}
}

// EnsureSchema crea la tabla si no existe. Dos procesos arrancando a la vez pueden chocar en
// pg_type aun con IF NOT EXISTS; el advisory lock lo evita y la violación única se tolera.
func EnsureSchema(ctx context.Context, db TxBeginner) error {
	err := RunInTx(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		_, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS `+DedupTable+` (
				partition  TEXT        NOT NULL,
				hash       TEXT        NOT NULL,
				filename   TEXT        NOT NULL,
				stored_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (partition, hash)
			)`)
		return err
	})
	if err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("crear tabla %s: %w", DedupTable, err)
	}
	return nil
}

// Open devuelve el índice de la partición. Con la partición bloqueada, el índice trabaja dentro
// de la transacción del bloqueo y no debe usarse después de liberarlo.
func (f *DedupIndexFactory) Open(_ context.Context, partition string) (repository.DedupIndex, error) {
	partition = strings.TrimSpace(partition)
	if partition == "" {
		return nil, domain.ErrInvalidPartition
	}
	var q Querier = f.db
	f.mu.Lock()
	if tx, ok := f.held[partition]; ok {
		q = tx
	}
	f.mu.Unlock()
	return &DedupIndex{q: q, partition: partition, now: f.now}, nil
}

// Lock abre una transacción y toma pg_advisory_xact_lock sobre la partición; otro proceso con la
// misma base espera en el servidor. unlock hace Commit, lo que publica los Append hechos dentro.
func (f *DedupIndexFactory) Lock(ctx context.Context, partition string) (func(), error) {
	partition = strings.TrimSpace(partition)
	if partition == "" {
		return nil, domain.ErrInvalidPartition
	}
	tx, err := f.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("dedup lock %s: begin: %w", partition, err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, partitionLockClass, partition); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("dedup lock %s: %w", partition, err)
	}

	f.mu.Lock()
	f.held[partition] = tx
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.held, partition)
			f.mu.Unlock()
			if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
				f.log.Error().Err(err).Str("partition", partition).Msg("commit del índice de deduplicación falló")
			}
		})
	}, nil
}

// DedupIndex índice de una partición.
type DedupIndex struct {
	q         Querier
	partition string
	now       func() time.Time
}

// Lookup busca el archivo registrado para hash.
func (x *DedupIndex) Lookup(ctx context.Context, hash string) (string, bool, error) {
	var filename string
	err := x.q.QueryRow(ctx,
		`SELECT filename FROM `+DedupTable+` WHERE partition = $1 AND hash = $2`,
		x.partition, hash,
	).Scan(&filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dedup lookup %s/%s: %w", x.partition, hash, err)
	}
	return filename, true, nil
}

// Append registra hash -> filename; si el hash ya estaba se conserva la fila existente.
func (x *DedupIndex) Append(ctx context.Context, hash, filename string) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO `+DedupTable+` (partition, hash, filename, stored_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (partition, hash) DO NOTHING`,
		x.partition, hash, filename, x.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("dedup append %s/%s: %w", x.partition, hash, err)
	}
	return nil
}
