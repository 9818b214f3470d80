// Package attachments deduplica adjuntos de facturas por hash de contenido antes de almacenarlos.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
)

// maxSuffix límite de sufijos numéricos al buscar un nombre libre.
const maxSuffix = 10000

// StoreResult resultado de Store. Un duplicado no es un error.
type StoreResult struct {
	Partition string `json:"partition"`
	Hash      string `json:"hash"`
	Filename  string `json:"filename"`
	Duplicate bool   `json:"duplicate"`
}

// Service guarda adjuntos una sola vez por partición (contraparte).
// Lectura del índice, escritura del archivo y registro en el índice van bajo el bloqueo de la
// partición: un mutex local y el Lock del backend, que cubre a otros procesos sobre el mismo
// almacenamiento. Particiones distintas avanzan en paralelo.
type Service struct {
	indexes repository.DedupIndexFactory
	blobs   repository.BlobStore
	locks   *keyedMutex
	log     zerolog.Logger
}

// NewService crea el servicio.
func NewService(indexes repository.DedupIndexFactory, blobs repository.BlobStore, log zerolog.Logger) *Service {
	return &Service{
		indexes: indexes,
		blobs:   blobs,
		locks:   newKeyedMutex(),
		log:     log,
	}
}

// Store calcula el SHA-256 del adjunto y lo busca en el índice de la partición a.Owner.
// Si ya existe devuelve Duplicate sin escribir. Si no, escribe el archivo (con sufijo _1, _2...
// si el nombre está ocupado) y registra hash -> archivo.
func (s *Service) Store(ctx context.Context, a entity.AttachmentRecord) (StoreResult, error) {
	partition := strings.TrimSpace(a.Owner)
	if partition == "" {
		return StoreResult{}, fmt.Errorf("%w: adjunto %q sin contraparte", domain.ErrInvalidPartition, a.Filename)
	}
	res := StoreResult{Partition: partition, Hash: a.ContentHash()}
	log := s.log.With().Str("partition", partition).Str("hash", res.Hash).Logger()

	unlock := s.locks.Lock(partition)
	defer unlock()
	release, err := s.indexes.Lock(ctx, partition)
	if err != nil {
		return res, fmt.Errorf("attachments: bloquear partición: %w", err)
	}
	defer release()

	idx, err := s.indexes.Open(ctx, partition)
	if err != nil {
		return res, fmt.Errorf("attachments: abrir índice: %w", err)
	}

	existing, found, err := idx.Lookup(ctx, res.Hash)
	if err != nil {
		// Sin índice legible se reprocesa: peor es perder el adjunto.
		log.Warn().Err(err).Msg("consulta al índice falló, se almacena de nuevo")
	} else if found {
		res.Filename = existing
		res.Duplicate = true
		log.Debug().Str("filename", existing).Msg("adjunto duplicado")
		return res, nil
	}

	name, err := s.put(ctx, partition, SafeFilename(a.Filename), a.Data)
	if err != nil {
		return res, err
	}
	res.Filename = name

	if err := idx.Append(ctx, res.Hash, name); err != nil {
		return res, fmt.Errorf("attachments: registrar %s en el índice: %w", name, err)
	}
	log.Info().Str("filename", name).Int("bytes", len(a.Data)).Msg("adjunto almacenado")
	return res, nil
}

func (s *Service) put(ctx context.Context, partition, name string, data []byte) (string, error) {
	for i := 0; i < maxSuffix; i++ {
		candidate := SuffixedName(name, i)
		err := s.blobs.Put(ctx, partition, candidate, data)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, domain.ErrBlobExists) {
			return "", fmt.Errorf("attachments: escribir %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("attachments: sin nombre libre para %s tras %d intentos", name, maxSuffix)
}

// SuffixedName "factura.pdf", 2 -> "factura_2.pdf". n = 0 devuelve el nombre sin cambios.
func SuffixedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", base, n, ext)
}

// SafeFilename deja solo el último componente del nombre, sin puntos iniciales (los archivos
// ocultos de la partición son del índice) y sin caracteres de control.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(strings.TrimSpace(path.Base(name)), ".")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "/" {
		return "adjunto"
	}
	return name
}
