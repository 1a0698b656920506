/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain records from
  the profile package are reused where their JSON shape is already the
  contract (Baseline, Holiday, HolidayEntry); request cards get their own
  wrappers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Update requests:
    UpdateRequestDTO, UpdateRequestCardDTO, SubmitUpdateRequest

  Holiday requests:
    HolidayRequestDTO, SubmitHolidayRequest

  Decisions:
    DecisionRequest, DecisionDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - present/present.go: DisplayModel embedded in cards
*/
package api

import (
	"time"

	"github.com/warp/profile-review/present"
	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/review"
)

// =============================================================================
// UPDATE REQUESTS
// =============================================================================

// UpdateRequestDTO is the request header shown on a card.
type UpdateRequestDTO struct {
	RequestID    string              `json:"requestId"`
	EmployeeID   string              `json:"employeeId"`
	EmployeeName string              `json:"employeeName"`
	RequestKind  profile.RequestKind `json:"requestKind"`
	Status       profile.Status      `json:"status"`
	AdminComment string              `json:"adminComment,omitempty"`
	CreatedAt    string              `json:"createdAt"`
}

// UpdateRequestCardDTO is one pending update request with its rendered diff.
type UpdateRequestCardDTO struct {
	Request   UpdateRequestDTO     `json:"request"`
	Diff      present.DisplayModel `json:"diff"`
	Degraded  bool                 `json:"degraded"`
	Malformed bool                 `json:"malformed"`
}

// SubmitUpdateRequest is the body of POST /api/employees/{id}/update-requests.
// ChangeSet may be a JSON object or a string holding one.
type SubmitUpdateRequest struct {
	EmployeeName string               `json:"employeeName"`
	RequestKind  profile.RequestKind  `json:"requestKind"`
	ChangeSet    profile.RawChangeSet `json:"changeSet"`
}

func toUpdateRequestDTO(r profile.UpdateRequest) UpdateRequestDTO {
	return UpdateRequestDTO{
		RequestID:    r.RequestID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		RequestKind:  r.Kind,
		Status:       r.Status,
		AdminComment: r.AdminComment,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

// HolidayRequestDTO is a holiday change request with its display rows.
type HolidayRequestDTO struct {
	RequestID    string               `json:"requestId"`
	EmployeeID   string               `json:"employeeId"`
	EmployeeName string               `json:"employeeName"`
	Status       profile.Status       `json:"status"`
	AdminComment string               `json:"adminComment,omitempty"`
	CreatedAt    string               `json:"createdAt"`
	Entries      []present.HolidayRow `json:"entries"`
}

// SubmitHolidayRequest is the body of POST /api/employees/{id}/holiday-requests.
type SubmitHolidayRequest struct {
	EmployeeName string                 `json:"employeeName"`
	Entries      []profile.HolidayEntry `json:"entries"`
}

func toHolidayRequestDTO(r profile.HolidayChangeRequest) HolidayRequestDTO {
	return HolidayRequestDTO{
		RequestID:    r.RequestID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Status:       r.Status,
		AdminComment: r.AdminComment,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		Entries:      present.HolidayEntries(r),
	}
}

// =============================================================================
// DECISIONS
// =============================================================================

// DecisionRequest is the optional body of approve and the required body of
// reject.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// DecisionDTO reports an approve/reject outcome. Warning is set when the
// decision went through but the pending list could not be refreshed.
type DecisionDTO struct {
	review.Decision
	Warning string `json:"warning,omitempty"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
