// Package filesystem implementa los puertos de deduplicación sobre el sistema de archivos local:
// un índice JSON-lines por partición y almacenamiento de adjuntos con creación exclusiva.
package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
)

// IndexFileName nombre del índice dentro del directorio de cada partición.
const IndexFileName = ".dedup_index.jsonl"

type indexEntry struct {
	Hash     string    `json:"hash"`
	Filename string    `json:"filename"`
	StoredAt time.Time `json:"stored_at"`
}

// DedupIndexFactory abre índices en <root>/<partición>/.dedup_index.jsonl.
type DedupIndexFactory struct {
	root string
	log  zerolog.Logger
}

// NewDedupIndexFactory crea la fábrica. El directorio raíz se crea al primer Append.
func NewDedupIndexFactory(root string, log zerolog.Logger) *DedupIndexFactory {
	return &DedupIndexFactory{root: root, log: log}
}

// Open devuelve el índice de la partición. No toca el disco: un índice inexistente es un índice vacío.
func (f *DedupIndexFactory) Open(_ context.Context, partition string) (repository.DedupIndex, error) {
	dir, err := partitionDir(f.root, partition)
	if err != nil {
		return nil, err
	}
	return &DedupIndex{
		path: filepath.Join(dir, IndexFileName),
		log:  f.log.With().Str("partition", partition).Logger(),
		now:  time.Now,
	}, nil
}

// DedupIndex índice append-only hash -> archivo de una partición.
type DedupIndex struct {
	path string
	log  zerolog.Logger
	now  func() time.Time
}

// Lookup busca el hash. Archivo ausente, ilegible o líneas corruptas cuentan como índice vacío
// (o como líneas inexistentes): se prefiere reprocesar a perder un adjunto.
func (x *DedupIndex) Lookup(_ context.Context, hash string) (string, bool, error) {
	f, err := os.Open(x.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			x.log.Warn().Err(err).Str("index", x.path).Msg("índice ilegible, se trata como vacío")
		}
		return "", false, nil
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	corrupt := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var e indexEntry
			if jerr := json.Unmarshal(line, &e); jerr != nil || e.Hash == "" {
				corrupt++
			} else if e.Hash == hash {
				return e.Filename, true, nil
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				x.log.Warn().Err(err).Str("index", x.path).Msg("lectura del índice interrumpida")
			}
			break
		}
	}
	if corrupt > 0 {
		x.log.Warn().Int("lineas_corruptas", corrupt).Str("index", x.path).Msg("líneas del índice ignoradas")
	}
	return "", false, nil
}

// Append agrega la entrada con una sola escritura O_APPEND. Si el hash ya está no escribe nada.
func (x *DedupIndex) Append(ctx context.Context, hash, filename string) error {
	if _, found, _ := x.Lookup(ctx, hash); found {
		return nil
	}
	line, err := json.Marshal(indexEntry{Hash: hash, Filename: filename, StoredAt: x.now().UTC()})
	if err != nil {
		return fmt.Errorf("filesystem: serializar entrada del índice: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return fmt.Errorf("filesystem: crear partición: %w", err)
	}
	f, err := os.OpenFile(x.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("filesystem: abrir índice: %w", err)
	}
	defer f.Close()

	// Una última línea truncada (escritura interrumpida) no debe pegarse a la nueva entrada.
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			line = append([]byte{'\n'}, line...)
		}
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("filesystem: escribir índice: %w", err)
	}
	return nil
}

var _ repository.DedupIndexFactory = (*DedupIndexFactory)(nil)
var _ repository.DedupIndex = (*DedupIndex)(nil)
