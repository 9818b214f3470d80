package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// LockFileName archivo de bloqueo dentro del directorio de cada partición.
const LockFileName = ".dedup.lock"

const (
	// LockStaleAfter un bloqueo más viejo que esto se considera abandonado (proceso caído).
	LockStaleAfter = 2 * time.Minute

	lockPollMin = 2 * time.Millisecond
	lockPollMax = 50 * time.Millisecond
)

// Lock crea <root>/<partición>/.dedup.lock con O_EXCL y espera mientras exista. Cualquier
// proceso sobre la misma raíz respeta el mismo archivo.
func (f *DedupIndexFactory) Lock(ctx context.Context, partition string) (func(), error) {
	dir, err := partitionDir(f.root, partition)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem: crear partición: %w", err)
	}
	lockPath := filepath.Join(dir, LockFileName)

	wait := lockPollMin
	for {
		lf, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, _ = lf.WriteString(strconv.Itoa(os.Getpid()) + " " + time.Now().UTC().Format(time.RFC3339Nano) + "\n")
			_ = lf.Close()
			var once sync.Once
			return func() {
				once.Do(func() {
					if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
						f.log.Warn().Err(err).Str("lock", lockPath).Msg("no se pudo liberar el bloqueo")
					}
				})
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("filesystem: bloquear partición %s: %w", partition, err)
		}

		if info, serr := os.Stat(lockPath); serr == nil && time.Since(info.ModTime()) > LockStaleAfter {
			// Solo se borra si sigue siendo el mismo archivo viejo.
			if again, aerr := os.Stat(lockPath); aerr == nil && os.SameFile(info, again) {
				f.log.Warn().Str("lock", lockPath).Time("desde", info.ModTime()).Msg("bloqueo abandonado, se elimina")
				_ = os.Remove(lockPath)
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("filesystem: esperando bloqueo de %s: %w", partition, ctx.Err())
		case <-timer.C:
		}
		if wait *= 2; wait > lockPollMax {
			wait = lockPollMax
		}
	}
}
