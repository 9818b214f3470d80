package repository

//go:generate mockgen -source=blob_repository.go -destination=mocks/blob_mocks.go -package=mocks

import "context"

// BlobStore almacenamiento de archivos adjuntos por partición.
type BlobStore interface {
	// Put escribe data bajo partition/name sin sobrescribir: si el nombre ya está
	// ocupado devuelve domain.ErrBlobExists.
	Put(ctx context.Context, partition, name string, data []byte) error
}
