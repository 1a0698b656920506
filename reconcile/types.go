package reconcile

import "github.com/warp/profile-review/profile"

// ChangeKind classifies an address difference.
type ChangeKind string

const (
	KindAdded   ChangeKind = "ADDED"
	KindUpdated ChangeKind = "UPDATED"
	KindRemoved ChangeKind = "REMOVED"
)

// FieldChange is a single old -> new pair. Values are already normalized
// with profile.Stringify; an absent old value is "".
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// AddressDiff describes how one address type changed.
type AddressDiff struct {
	AddressType  profile.AddressType `json:"addressType"`
	Kind         ChangeKind          `json:"kind"`
	FieldChanges []FieldChange       `json:"fieldChanges"`
}

// PhotoChange is present only when the proposed photo differs.
type PhotoChange struct {
	OldURL string `json:"oldUrl"`
	NewURL string `json:"newUrl"`
}

// DiffResult is the engine output. It is recomputed on every render and never
// persisted. Collections are never nil.
type DiffResult struct {
	ScalarChanges []FieldChange            `json:"scalarChanges"`
	AddressDiffs  []AddressDiff            `json:"addressDiffs"`
	NewDocuments  []profile.DocumentRecord `json:"newDocuments"`
	PhotoChange   *PhotoChange             `json:"photoChange,omitempty"`
}

func emptyResult() DiffResult {
	return DiffResult{
		ScalarChanges: []FieldChange{},
		AddressDiffs:  []AddressDiff{},
		NewDocuments:  []profile.DocumentRecord{},
	}
}

// IsEmpty reports whether nothing changed.
func (d DiffResult) IsEmpty() bool {
	return len(d.ScalarChanges) == 0 &&
		len(d.AddressDiffs) == 0 &&
		len(d.NewDocuments) == 0 &&
		d.PhotoChange == nil
}
