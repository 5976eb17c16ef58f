// Package importer turns bulk tabular batches into import candidates,
// detects collisions with existing records and commits the batch as
// individual mutations through the sync engine.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vtz-stock-sync/internal/model"
)

// Column aliases accepted in the header row. The original spreadsheet
// template uses the Portuguese names.
var columnAliases = map[string]string{
	"name":        "name",
	"nome":        "name",
	"weight":      "weight",
	"peso":        "weight",
	"location":    "location",
	"local":       "location",
	"localizacao": "location",
	"localização": "location",
	"code":        "code",
	"codigo":      "code",
	"código":      "code",
	"entry":       "entry",
	"entrada":     "entry",
	"expiry":      "expiry",
	"validade":    "expiry",
	"quantity":    "quantity",
	"quantidade":  "quantity",
	"image":       "image",
	"imagem":      "image",
}

// ParseCSV reads a tabular batch into import candidates. The first row is
// the header; unknown columns are ignored, missing quantities parse as zero.
func ParseCSV(r io.Reader) ([]model.ImportCandidate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("import file is empty")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	fields := make(map[int]string)
	for i, col := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			fields[i] = name
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no recognized columns in header row")
	}

	var candidates []model.ImportCandidate
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		var p model.Product
		for i, value := range record {
			field, ok := fields[i]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch field {
			case "name":
				p.Name = value
			case "weight":
				p.Weight = value
			case "location":
				p.Location = value
			case "code":
				p.Code = value
			case "entry":
				p.EntryDate = value
			case "expiry":
				p.ExpiryDate = value
			case "quantity":
				qty, err := strconv.Atoi(value)
				if err != nil || qty < 0 {
					qty = 0
				}
				p.Quantity = qty
			case "image":
				p.ImageURL = value
			}
		}

		// Rows with neither name nor code carry nothing to import.
		if p.Name == "" && p.Code == "" {
			continue
		}
		candidates = append(candidates, model.ImportCandidate{Product: p})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("import file has no data rows")
	}
	return candidates, nil
}
