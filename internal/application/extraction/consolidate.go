package extraction

import "github.com/jhoicas/conciliador-ubl/internal/domain/entity"

// Consolidation registros e ítems únicos de un lote. Gana la primera aparición.
type Consolidation struct {
	Records          []*entity.InvoiceRecord `json:"records"`
	Items            []entity.InvoiceItem    `json:"items"`
	DuplicateRecords int                     `json:"duplicate_records"`
	DuplicateItems   int                     `json:"duplicate_items"`
}

// Consolidate colapsa los registros aceptados por InvoiceRecord.Key y los ítems por hash.
// Los ítems de un registro duplicado no se vuelven a contar.
func Consolidate(outcomes []Outcome) Consolidation {
	c := Consolidation{Records: []*entity.InvoiceRecord{}, Items: []entity.InvoiceItem{}}
	seenRecords := make(map[string]struct{})
	seenItems := make(map[string]struct{})

	for _, o := range outcomes {
		if !o.Accepted() || o.Record == nil {
			continue
		}
		key := o.Record.Key()
		if _, ok := seenRecords[key]; ok {
			c.DuplicateRecords++
			continue
		}
		seenRecords[key] = struct{}{}
		c.Records = append(c.Records, o.Record)

		for _, it := range o.Record.Items {
			if _, ok := seenItems[it.Hash]; ok {
				c.DuplicateItems++
				continue
			}
			seenItems[it.Hash] = struct{}{}
			c.Items = append(c.Items, it)
		}
	}
	return c
}
