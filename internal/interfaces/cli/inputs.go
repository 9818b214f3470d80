package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
)

// readInputs lee los archivos indicados. Un directorio aporta sus .xml y .zip (sin recursión)
// en orden alfabético.
func readInputs(paths []string) ([]extraction.Input, error) {
	var inputs []extraction.Input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, commandError("leer entrada", err)
		}
		if !info.IsDir() {
			in, err := readInput(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, commandError("leer directorio", err)
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() && isDocumentFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			in, err := readInput(filepath.Join(p, name))
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
	}
	if len(inputs) == 0 {
		return nil, commandError(fmt.Sprintf("sin documentos .xml o .zip en %v", paths), nil)
	}
	return inputs, nil
}

func readInput(path string) (extraction.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extraction.Input{}, commandError("leer entrada", err)
	}
	return extraction.Input{Name: path, Data: data}, nil
}

func isDocumentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".zip":
		return true
	}
	return false
}
