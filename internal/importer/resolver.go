package importer

import (
	"context"
	"fmt"
	"log"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/sync"
)

// AuditFunc records one audit log entry for a committed row.
type AuditFunc func(ctx context.Context, kind model.LogKind, message string, before, after any)

// Report summarizes one committed batch.
type Report struct {
	Created  int      `json:"created"`
	Merged   int      `json:"merged"`
	Replaced int      `json:"replaced"`
	Ignored  int      `json:"ignored"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Processed returns the number of rows that produced a mutation.
func (r *Report) Processed() int {
	return r.Created + r.Merged + r.Replaced
}

// Resolver holds one import batch while the caller decides a resolution
// action per conflicting row, then commits the batch through the engine.
type Resolver struct {
	rows     []model.ImportCandidate
	existing map[string]model.Product
	engine   *sync.Engine
	audit    AuditFunc
}

// NewResolver annotates candidates against the existing records: an exact
// (name, code) match marks the row duplicate with action "none" awaiting a
// decision, otherwise the row defaults to "new".
func NewResolver(candidates []model.ImportCandidate, existing []model.Product, engine *sync.Engine, audit AuditFunc) *Resolver {
	byID := make(map[string]model.Product, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	rows := make([]model.ImportCandidate, len(candidates))
	copy(rows, candidates)
	for i := range rows {
		rows[i].Duplicate = false
		rows[i].ExistingID = ""
		for _, p := range existing {
			if p.SameLot(rows[i].Product.Name, rows[i].Product.Code) {
				rows[i].Duplicate = true
				rows[i].ExistingID = p.ID
				break
			}
		}
		if rows[i].Action == "" || !rows[i].Action.Valid() {
			if rows[i].Duplicate {
				rows[i].Action = model.ActionNone
			} else {
				rows[i].Action = model.ActionNew
			}
		}
	}

	return &Resolver{rows: rows, existing: byID, engine: engine, audit: audit}
}

// Rows returns the annotated batch.
func (r *Resolver) Rows() []model.ImportCandidate {
	result := make([]model.ImportCandidate, len(r.rows))
	copy(result, r.rows)
	return result
}

// SetAction changes one row's resolution action.
func (r *Resolver) SetAction(index int, action model.ImportAction) error {
	if index < 0 || index >= len(r.rows) {
		return fmt.Errorf("import row %d out of range", index)
	}
	if !action.Valid() {
		return fmt.Errorf("unknown import action %q", action)
	}
	r.rows[index].Action = action
	return nil
}

// Commit executes the batch as individual mutations through the engine.
// Rows are processed independently; a failed row never aborts the rest.
// The caller forces a full authoritative refresh afterwards.
func (r *Resolver) Commit(ctx context.Context) *Report {
	report := &Report{}

	for _, row := range r.rows {
		switch row.Action {
		case model.ActionNew:
			r.commitNew(ctx, row, report)
		case model.ActionSum:
			r.commitSum(ctx, row, report)
		case model.ActionReplace:
			r.commitReplace(ctx, row, report)
		default:
			// ignore, and duplicates never resolved: no mutation, no log.
			report.Ignored++
		}
	}

	log.Printf("[Importer] Batch committed - created: %d, merged: %d, replaced: %d, ignored: %d, failed: %d",
		report.Created, report.Merged, report.Replaced, report.Ignored, report.Failed)
	return report
}

func (r *Resolver) commitNew(ctx context.Context, row model.ImportCandidate, report *Report) {
	if err := row.Product.Validate(); err != nil {
		r.fail(report, row, err)
		return
	}
	if _, err := r.engine.Apply(ctx, model.NewCreate(row.Product)); err != nil {
		r.fail(report, row, err)
		return
	}
	report.Created++
	r.audit(ctx, model.LogImported,
		fmt.Sprintf("Imported %q (qty: %d)", row.Product.Name, row.Product.Quantity),
		nil, row.Product.Quantity)
}

func (r *Resolver) commitSum(ctx context.Context, row model.ImportCandidate, report *Report) {
	target, ok := r.existing[row.ExistingID]
	if !ok {
		r.fail(report, row, fmt.Errorf("existing record %q not found", row.ExistingID))
		return
	}
	before := target.Quantity
	target.Quantity = before + row.Product.Quantity

	if _, err := r.engine.Apply(ctx, model.NewUpdate(target)); err != nil {
		r.fail(report, row, err)
		return
	}
	report.Merged++
	r.audit(ctx, model.LogImportMerged,
		fmt.Sprintf("Import added %d units to %q", row.Product.Quantity, target.Name),
		before, target.Quantity)
}

func (r *Resolver) commitReplace(ctx context.Context, row model.ImportCandidate, report *Report) {
	target, ok := r.existing[row.ExistingID]
	if !ok {
		r.fail(report, row, fmt.Errorf("existing record %q not found", row.ExistingID))
		return
	}
	before := target.Quantity
	target.Quantity = row.Product.Quantity
	target.ExpiryDate = row.Product.ExpiryDate

	if _, err := r.engine.Apply(ctx, model.NewUpdate(target)); err != nil {
		r.fail(report, row, err)
		return
	}
	report.Replaced++
	r.audit(ctx, model.LogImportReplaced,
		fmt.Sprintf("Import replaced quantity and expiry of %q", target.Name),
		before, target.Quantity)
}

func (r *Resolver) fail(report *Report, row model.ImportCandidate, err error) {
	report.Failed++
	report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", row.Product.Name, err))
	log.Printf("[Importer] Row %q failed: %v", row.Product.Name, err)
}
