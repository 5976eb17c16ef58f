package model

import "time"

// LogKind classifies an audit log entry.
type LogKind string

const (
	LogCreated        LogKind = "created"
	LogEdited         LogKind = "edited"
	LogRemoved        LogKind = "removed"
	LogSold           LogKind = "sold"
	LogQuantity       LogKind = "quantity"
	LogMerged         LogKind = "merged"
	LogImported       LogKind = "imported"
	LogImportMerged   LogKind = "import-merged"
	LogImportReplaced LogKind = "import-replaced"
	LogInfo           LogKind = "info"
)

// LogEntry is one audit record. Append-only; the local mirror keeps the
// most recent entries independent of the backend's own retention.
type LogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"ts"`
	User      string         `json:"user"`
	Kind      LogKind        `json:"type"`
	Message   string         `json:"message"`
	Before    any            `json:"before,omitempty"`
	After     any            `json:"after,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}
