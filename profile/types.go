/*
Package profile holds the data model shared by the review service.

PURPOSE:
  An employee edits their profile through a self-service flow. The edit is
  stored as an UpdateRequest carrying a change-set, and an admin compares it
  against the employee's stored profile before approving or rejecting it.
  This package defines both sides of that comparison plus the request records
  that drive the approval workflow.

KEY CONCEPTS IN THIS FILE (types.go):
  - Baseline: the employee record as currently persisted ("before")
  - AddressRecord / DocumentRecord: sub-records of a profile
  - UpdateRequest / HolidayChangeRequest: records awaiting a decision
  - Status: one-way PENDING -> APPROVED | REJECTED machine

SEE ALSO:
  - changeset.go: canonical ChangeSet and boundary decoding
  - value.go: string normalization used by every comparison
  - errors.go: sentinel errors
*/
package profile

import "time"

// =============================================================================
// ADDRESSES
// =============================================================================

// AddressType is the join key used when matching addresses between snapshots.
type AddressType string

const (
	AddressCurrent   AddressType = "CURRENT"
	AddressPermanent AddressType = "PERMANENT"
	AddressOffice    AddressType = "OFFICE"
)

// AddressRecord is one postal address of an employee.
type AddressRecord struct {
	AddressID   string      `json:"addressId,omitempty"`
	AddressType AddressType `json:"addressType"`
	HouseNo     string      `json:"houseNo,omitempty"`
	StreetName  string      `json:"streetName,omitempty"`
	City        string      `json:"city,omitempty"`
	State       string      `json:"state,omitempty"`
	Country     string      `json:"country,omitempty"`
	Pincode     string      `json:"pincode,omitempty"`
}

// TrackedAddressFields lists the address fields compared by the engine, in
// display order.
var TrackedAddressFields = []string{"houseNo", "streetName", "city", "state", "country", "pincode"}

// Field returns the value of a tracked field by its wire name.
func (a AddressRecord) Field(name string) string {
	switch name {
	case "houseNo":
		return a.HouseNo
	case "streetName":
		return a.StreetName
	case "city":
		return a.City
	case "state":
		return a.State
	case "country":
		return a.Country
	case "pincode":
		return a.Pincode
	}
	return ""
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentRecord is an uploaded document attached to a profile.
type DocumentRecord struct {
	DocumentID string `json:"documentId,omitempty"`
	DocType    string `json:"docType"`
	FileURL    string `json:"fileUrl,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
	Verified   bool   `json:"verified"`
}

// HasContent reports whether the document points at an actual file.
func (d DocumentRecord) HasContent() bool {
	return d.FileURL != "" || d.DocumentID != ""
}

// =============================================================================
// BASELINE
// =============================================================================

// Baseline is the employee's currently persisted profile.
type Baseline struct {
	EmployeeID string           `json:"employeeId"`
	Fields     map[string]any   `json:"fields"`
	Addresses  []AddressRecord  `json:"addresses"`
	Documents  []DocumentRecord `json:"documents"`
	PhotoURL   string           `json:"photoUrl,omitempty"`
}

// Field returns a scalar field, or nil when the baseline or field is absent.
func (b *Baseline) Field(name string) any {
	if b == nil || b.Fields == nil {
		return nil
	}
	return b.Fields[name]
}

// =============================================================================
// REQUESTS
// =============================================================================

// RequestKind selects how the change-set addresses are interpreted.
type RequestKind string

const (
	KindFieldUpdate   RequestKind = "FIELD_UPDATE"
	KindAddressDelete RequestKind = "ADDRESS_DELETE"
)

// Status of a request awaiting review.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether s -> to is a valid move. Only PENDING may
// move, and only to a terminal status.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && to.IsTerminal()
}

// UpdateRequest is a pending profile edit submitted by an employee.
type UpdateRequest struct {
	RequestID    string       `json:"requestId"`
	EmployeeID   string       `json:"employeeId"`
	EmployeeName string       `json:"employeeName"`
	Kind         RequestKind  `json:"requestKind"`
	Status       Status       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	AdminComment string       `json:"adminComment,omitempty"`
	ChangeSet    RawChangeSet `json:"changeSet"`
}

// Key identifies the request inside its workflow.
func (r UpdateRequest) Key() string { return r.RequestID }

// CurrentStatus returns the stored status.
func (r UpdateRequest) CurrentStatus() Status { return r.Status }

// HolidayUpdateType is the intent of a single holiday change entry.
type HolidayUpdateType string

const (
	HolidayAdd    HolidayUpdateType = "ADD_HOLIDAY"
	HolidayRemove HolidayUpdateType = "REMOVE_HOLIDAY"
)

// HolidayEntry describes one holiday to add or remove.
type HolidayEntry struct {
	UpdateType  HolidayUpdateType `json:"updateType"`
	HolidayName string            `json:"holidayName"`
	HolidayDate string            `json:"holidayDate"`
}

// HolidayChangeRequest is a list of calendar edits awaiting review. The
// entries already describe the change, so there is nothing to diff.
type HolidayChangeRequest struct {
	RequestID    string         `json:"requestId"`
	EmployeeID   string         `json:"employeeId"`
	EmployeeName string         `json:"employeeName"`
	Status       Status         `json:"status"`
	AdminComment string         `json:"adminComment,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Entries      []HolidayEntry `json:"entries"`
}

func (r HolidayChangeRequest) Key() string { return r.RequestID }

func (r HolidayChangeRequest) CurrentStatus() Status { return r.Status }

// Holiday is a calendar entry. Approved holiday change requests add and
// remove these.
type Holiday struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}
