package entity

import (
	"crypto/sha256"
	"encoding/hex"
)

// AttachmentRecord adjunto binario de una factura (PDF, XML, imágenes).
// Su identidad es el SHA-256 del contenido, no el nombre de archivo.
type AttachmentRecord struct {
	Filename string `json:"filename"`
	Owner    string `json:"owner"` // identificador de la contraparte (NIT del proveedor)
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
}

// ContentHash SHA-256 hexadecimal del contenido.
func (a AttachmentRecord) ContentHash() string {
	return ContentHash(a.Data)
}

// ContentHash SHA-256 hexadecimal de data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
