package dian

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// Fingerprint SHA-256 (hex) de la forma canónica C14N del XML. Dos copias de la misma factura
// que solo difieren en serialización (orden de atributos, espacios en etiquetas, comillas)
// comparten huella.
func Fingerprint(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("dian: canonicalizar XML: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
