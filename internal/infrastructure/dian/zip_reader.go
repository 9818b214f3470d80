package dian

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxZipEntrySize límite por entrada al descomprimir (protege contra bombas ZIP).
const MaxZipEntrySize int64 = 64 << 20

// BundleFile archivo contenido en un ZIP.
type BundleFile struct {
	Name string
	Data []byte
}

// Bundle contenido de un ZIP de factura electrónica recibido por correo: el XML
// (Invoice o AttachedDocument) y el resto de archivos (PDF de representación gráfica, anexos).
type Bundle struct {
	Documents   []BundleFile
	Attachments []BundleFile
}

// ReadZipBundle descomprime el ZIP en memoria y separa los .xml del resto. Se ignoran
// directorios y metadatos de macOS. Una entrada que supera MaxZipEntrySize es un error.
func ReadZipBundle(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: abrir archivo: %w", err)
	}

	b := &Bundle{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		name := path.Base(f.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		content, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		bf := BundleFile{Name: name, Data: content}
		if strings.EqualFold(path.Ext(name), ".xml") {
			b.Documents = append(b.Documents, bf)
		} else {
			b.Attachments = append(b.Attachments, bf)
		}
	}
	return b, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("zip: abrir entrada %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, MaxZipEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("zip: leer entrada %s: %w", f.Name, err)
	}
	if int64(len(content)) > MaxZipEntrySize {
		return nil, fmt.Errorf("zip: la entrada %s supera %d bytes", f.Name, MaxZipEntrySize)
	}
	return content, nil
}

// IsZip indica si data empieza con la firma de un archivo ZIP.
func IsZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}
