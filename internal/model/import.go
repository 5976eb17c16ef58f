package model

// ImportAction is the resolution chosen for one import row.
type ImportAction string

const (
	// ActionNone marks a duplicate row still awaiting a user decision.
	ActionNone ImportAction = "none"
	// ActionNew creates the row as a separate lot.
	ActionNew ImportAction = "new"
	// ActionSum adds the imported quantity to the existing lot.
	ActionSum ImportAction = "sum"
	// ActionReplace overwrites the existing lot's quantity and expiry.
	ActionReplace ImportAction = "replace"
	// ActionIgnore skips the row entirely.
	ActionIgnore ImportAction = "ignore"
)

// Valid reports whether a is a known resolution action.
func (a ImportAction) Valid() bool {
	switch a {
	case ActionNone, ActionNew, ActionSum, ActionReplace, ActionIgnore:
		return true
	}
	return false
}

// ImportCandidate is one row from a bulk import batch, annotated with the
// outcome of duplicate detection. Action stays mutable until the batch is
// committed.
type ImportCandidate struct {
	Product    Product      `json:"product"`
	Duplicate  bool         `json:"duplicate"`
	ExistingID string       `json:"existing_id,omitempty"`
	Action     ImportAction `json:"action"`
}
