package repository

//go:generate mockgen -source=dedup_index_repository.go -destination=mocks/dedup_mocks.go -package=mocks

import "context"

// DedupIndex índice hash de contenido -> archivo almacenado de UNA partición (contraparte).
// Es de solo agregado: el motor nunca elimina entradas.
type DedupIndex interface {
	// Lookup devuelve el archivo registrado para hash y si existe.
	Lookup(ctx context.Context, hash string) (filename string, found bool, err error)
	// Append registra hash -> filename. Si el hash ya existía conserva la primera entrada.
	Append(ctx context.Context, hash, filename string) error
}

// DedupIndexFactory abre (o crea de forma perezosa) el índice de una partición.
type DedupIndexFactory interface {
	Open(ctx context.Context, partition string) (DedupIndex, error)
	// Lock exclusión mutua sobre la partición entre todos los procesos que comparten el
	// backend. Bloquea hasta obtenerla o hasta que ctx termine. unlock es idempotente.
	Lock(ctx context.Context, partition string) (unlock func(), err error)
}
