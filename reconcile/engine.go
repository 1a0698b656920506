/*
Package reconcile compares an employee's stored profile with a proposed
change-set and produces a structured, reviewable diff.

PURPOSE:
  The engine is a pure function. It performs no I/O, never mutates its
  inputs and never fails: the worst case is an empty DiffResult. It is cheap
  enough to run on every render of a pending-request card.

ALGORITHM:
  1. Scalar fields: every non-reserved change-set key with a non-blank value
     whose normalized string differs from the baseline's.
  2. Addresses, deletion request: the referenced addressId yields exactly one
     REMOVED entry for its type. Nothing else is examined.
  3. Addresses, general path: baseline and proposal are indexed by
     addressType (not addressId). New types yield one ADDED entry per
     non-empty field, shared types one UPDATED entry with every differing
     field, missing types one REMOVED entry.
  4. Documents: additive. Any proposed document with a file URL or id that is
     not already on the baseline is reported as new.
  5. Photo: reported when the proposed URL is non-empty and differs.

KNOWN LIMITATION:
  Two addresses sharing a type cannot be told apart. Both sides collapse to
  the last address of each type.

SEE ALSO:
  - profile/changeset.go: canonical change-set decoding
  - present: display projection of a DiffResult
*/
package reconcile

import "github.com/warp/profile-review/profile"

// Reconcile computes the diff between baseline and cs. baseline may be nil
// when the profile could not be fetched; every proposed value is then
// reported against an empty old value.
func Reconcile(baseline *profile.Baseline, cs profile.ChangeSet, kind profile.RequestKind) DiffResult {
	result := emptyResult()

	result.ScalarChanges = diffScalars(baseline, cs.Fields)

	switch {
	case kind == profile.KindAddressDelete:
		result.AddressDiffs = diffAddressDeletion(baseline, cs.AddressID)
	case cs.HasAddresses:
		result.AddressDiffs = diffAddresses(baseline, cs.Addresses)
	}

	result.NewDocuments = diffDocuments(baseline, cs.Documents)
	result.PhotoChange = diffPhoto(baseline, cs.PhotoURL)
	return result
}

// ReconcileRaw decodes raw and reconciles it. A malformed change-set yields
// an empty DiffResult together with an error wrapping
// profile.ErrChangeSetMalformed; callers decide whether to surface it.
func ReconcileRaw(baseline *profile.Baseline, raw profile.RawChangeSet, kind profile.RequestKind) (DiffResult, error) {
	cs, err := profile.DecodeChangeSet(raw)
	if err != nil {
		return emptyResult(), err
	}
	return Reconcile(baseline, cs, kind), nil
}

// =============================================================================
// SCALARS
// =============================================================================

func diffScalars(baseline *profile.Baseline, fields []profile.Field) []FieldChange {
	changes := []FieldChange{}
	for _, f := range fields {
		if profile.IsReservedKey(f.Name) || profile.IsBlank(f.Value) {
			continue
		}
		oldValue := profile.Stringify(baseline.Field(f.Name))
		newValue := profile.Stringify(f.Value)
		if oldValue == newValue {
			continue
		}
		changes = append(changes, FieldChange{Field: f.Name, OldValue: oldValue, NewValue: newValue})
	}
	return changes
}

// =============================================================================
// ADDRESSES
// =============================================================================

func diffAddressDeletion(baseline *profile.Baseline, addressID string) []AddressDiff {
	if baseline == nil || addressID == "" {
		return []AddressDiff{}
	}
	for _, a := range baseline.Addresses {
		if a.AddressID == addressID {
			return []AddressDiff{removed(a.AddressType)}
		}
	}
	return []AddressDiff{}
}

// addressIndex maps addressType to the last address of that type, keeping
// the order in which types first appeared.
type addressIndex struct {
	byType map[profile.AddressType]profile.AddressRecord
	order  []profile.AddressType
}

func newAddressIndex() *addressIndex {
	return &addressIndex{byType: make(map[profile.AddressType]profile.AddressRecord)}
}

func (ix *addressIndex) put(a profile.AddressRecord) {
	if _, ok := ix.byType[a.AddressType]; !ok {
		ix.order = append(ix.order, a.AddressType)
	}
	ix.byType[a.AddressType] = a
}

func (ix *addressIndex) get(t profile.AddressType) (profile.AddressRecord, bool) {
	a, ok := ix.byType[t]
	return a, ok
}

func diffAddresses(baseline *profile.Baseline, proposed []profile.ProposedAddress) []AddressDiff {
	oldIx := newAddressIndex()
	if baseline != nil {
		for _, a := range baseline.Addresses {
			oldIx.put(a)
		}
	}

	newIx := newAddressIndex()
	var explicit []AddressDiff
	dropped := make(map[profile.AddressType]bool)
	for _, pa := range proposed {
		if pa.IsDeleted {
			if !dropped[pa.AddressType] {
				dropped[pa.AddressType] = true
				explicit = append(explicit, removed(pa.AddressType))
			}
			continue
		}
		newIx.put(pa.AddressRecord)
	}

	diffs := []AddressDiff{}
	for _, t := range newIx.order {
		newAddr, _ := newIx.get(t)
		oldAddr, existed := oldIx.get(t)
		if !existed {
			diffs = append(diffs, added(newAddr)...)
			continue
		}
		if d, ok := updated(oldAddr, newAddr); ok {
			diffs = append(diffs, d)
		}
	}

	diffs = append(diffs, explicit...)

	for _, t := range oldIx.order {
		if _, kept := newIx.get(t); kept || dropped[t] {
			continue
		}
		diffs = append(diffs, removed(t))
	}
	return diffs
}

// added emits one entry per non-empty field. Empty proposed fields count as
// not provided.
func added(a profile.AddressRecord) []AddressDiff {
	var diffs []AddressDiff
	for _, f := range profile.TrackedAddressFields {
		v := a.Field(f)
		if v == "" {
			continue
		}
		diffs = append(diffs, AddressDiff{
			AddressType:  a.AddressType,
			Kind:         KindAdded,
			FieldChanges: []FieldChange{{Field: f, NewValue: v}},
		})
	}
	return diffs
}

// updated compares every tracked field. Unlike added, an empty proposed value
// overwriting a non-empty one is a change.
func updated(oldAddr, newAddr profile.AddressRecord) (AddressDiff, bool) {
	var changes []FieldChange
	for _, f := range profile.TrackedAddressFields {
		o, n := oldAddr.Field(f), newAddr.Field(f)
		if o == n {
			continue
		}
		changes = append(changes, FieldChange{Field: f, OldValue: o, NewValue: n})
	}
	if len(changes) == 0 {
		return AddressDiff{}, false
	}
	return AddressDiff{AddressType: newAddr.AddressType, Kind: KindUpdated, FieldChanges: changes}, true
}

func removed(t profile.AddressType) AddressDiff {
	return AddressDiff{AddressType: t, Kind: KindRemoved, FieldChanges: []FieldChange{}}
}

// =============================================================================
// DOCUMENTS & PHOTO
// =============================================================================

func diffDocuments(baseline *profile.Baseline, proposed []profile.DocumentRecord) []profile.DocumentRecord {
	docs := []profile.DocumentRecord{}
	for _, d := range proposed {
		if !d.HasContent() || onBaseline(baseline, d) {
			continue
		}
		docs = append(docs, d)
	}
	return docs
}

func onBaseline(baseline *profile.Baseline, d profile.DocumentRecord) bool {
	if baseline == nil {
		return false
	}
	for _, b := range baseline.Documents {
		if b.DocType == d.DocType && b.FileURL == d.FileURL && b.DocumentID == d.DocumentID {
			return true
		}
	}
	return false
}

func diffPhoto(baseline *profile.Baseline, proposed string) *PhotoChange {
	if proposed == "" {
		return nil
	}
	var current string
	if baseline != nil {
		current = baseline.PhotoURL
	}
	if current == proposed {
		return nil
	}
	return &PhotoChange{OldURL: current, NewURL: proposed}
}
