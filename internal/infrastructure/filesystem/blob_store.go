package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/repository"
)

// BlobStore guarda adjuntos en <root>/<partición>/<nombre>.
type BlobStore struct {
	root string
}

// NewBlobStore crea el almacenamiento sobre root.
func NewBlobStore(root string) *BlobStore {
	return &BlobStore{root: root}
}

// Put crea el archivo con O_EXCL: si el nombre existe devuelve domain.ErrBlobExists sin tocarlo.
func (s *BlobStore) Put(_ context.Context, partition, name string, data []byte) error {
	dir, err := partitionDir(s.root, partition)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filesystem: crear partición: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", domain.ErrBlobExists, name)
		}
		return fmt.Errorf("filesystem: crear %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("filesystem: escribir %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("filesystem: cerrar %s: %w", name, err)
	}
	return nil
}

func partitionDir(root, partition string) (string, error) {
	if err := validateName(partition); err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPartition, partition)
	}
	return filepath.Join(root, partition), nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: nombre %q", domain.ErrInvalidInput, name)
	}
	return nil
}

var _ repository.BlobStore = (*BlobStore)(nil)
