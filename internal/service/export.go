package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"vtz-stock-sync/internal/model"
)

// WriteCSV writes the cached product list as CSV, matching the original
// export column layout.
func (s *InventoryService) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "name", "weight", "location", "code", "entry", "expiry", "quantity", "image"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range s.Products() {
		row := []string{
			p.ID, p.Name, p.Weight, p.Location, p.Code,
			p.EntryDate, p.ExpiryDate, strconv.Itoa(p.Quantity), p.ImageURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Backup is the JSON export payload: everything the client holds locally.
type Backup struct {
	Products []model.Product  `json:"products"`
	Logs     []model.LogEntry `json:"logs"`
	Sales    []model.Sale     `json:"sales"`
}

// WriteJSON writes a full local backup: products, logs and sales.
func (s *InventoryService) WriteJSON(w io.Writer) error {
	backup := Backup{
		Products: s.Products(),
		Logs:     s.Logs(0),
		Sales:    s.Sales(0),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}
