package dian

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
)

// ExtractEmbeddedAttachments decodifica los cbc:EmbeddedDocumentBinaryObject (base64) de
// cac:AdditionalDocumentReference. owner es el NIT del proveedor. Los objetos que no decodifican
// se reportan en warnings y se omiten.
func ExtractEmbeddedAttachments(invoice *etree.Element, owner string) (out []entity.AttachmentRecord, warnings []string) {
	objs := Nodes(invoice, "cac:AdditionalDocumentReference/cac:Attachment/cbc:EmbeddedDocumentBinaryObject")
	for i, obj := range objs {
		payload := strings.Join(strings.Fields(obj.Text()), "")
		if payload == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("adjunto embebido %d no es base64 válido: %v", i+1, err))
			continue
		}
		name := path.Base(strings.TrimSpace(obj.SelectAttrValue("filename", "")))
		if name == "" || name == "." || name == "/" {
			name = fmt.Sprintf("adjunto_%d", i+1)
		}
		out = append(out, entity.AttachmentRecord{
			Filename: name,
			Owner:    owner,
			MimeType: obj.SelectAttrValue("mimeCode", ""),
			Data:     data,
		})
	}
	return out, warnings
}
