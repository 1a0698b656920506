/*
handlers.go - HTTP API handlers for the profile review service

PURPOSE:
  Exposes the review workflow via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the review package.

ENDPOINTS:
  Update requests:
    GET    /api/update-requests/pending        Pending cards with diffs
    GET    /api/update-requests/{id}           One request with its diff
    POST   /api/update-requests/{id}/approve   Approve
    POST   /api/update-requests/{id}/reject    Reject ({"comment": "..."})

  Holiday requests:
    GET    /api/holiday-requests/pending       Pending requests with entries
    POST   /api/holiday-requests/{id}/approve  Approve and apply entries
    POST   /api/holiday-requests/{id}/reject   Reject ({"comment": "..."})

  Employees:
    GET    /api/employees/{id}/profile          Stored baseline
    PUT    /api/employees/{id}/profile          Replace baseline
    POST   /api/employees/{id}/update-requests  Submit a profile edit
    POST   /api/employees/{id}/holiday-requests Submit holiday changes

  Holidays:
    GET    /api/holidays                        Calendar

ARCHITECTURE:
  Handler holds the store and one Controller per workflow. The controllers
  share a Locks value, so a second decision arriving while one is in flight
  for the same workflow is dropped (202 with "ignored": true).

  Every GET of the pending update list builds a new review.View, so each
  page load starts with an empty baseline cache.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Request or profile not found
  - 409: Request already decided
  - 502: Backend call failed
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/profile-review/present"
	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/reconcile"
	"github.com/warp/profile-review/review"
	"github.com/warp/profile-review/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options configure a Handler. Zero values fall back to defaults.
type Options struct {
	Logger            *slog.Logger
	WarmConcurrency   int
	LongTextThreshold int
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.Store
	Logger    *slog.Logger
	Presenter *present.Presenter

	updates  *review.Controller[profile.UpdateRequest]
	holidays *review.Controller[profile.HolidayChangeRequest]
	warm     int

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(s store.Store, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locks := review.NewLocks()
	return &Handler{
		Store:     s,
		Logger:    logger,
		Presenter: present.New(present.Options{LongTextThreshold: opts.LongTextThreshold}),
		updates:   review.NewUpdateController(s, locks, logger),
		holidays:  review.NewHolidayController(s, locks, logger),
		warm:      opts.WarmConcurrency,
	}
}

// =============================================================================
// UPDATE REQUEST ENDPOINTS
// =============================================================================

// ListPendingUpdateRequests returns every pending update request as a card.
// GET /api/update-requests/pending
func (h *Handler) ListPendingUpdateRequests(w http.ResponseWriter, r *http.Request) {
	view := review.NewView(h.updates, h.Store, h.Logger, h.warm)
	cards, err := view.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load pending update requests", err)
		return
	}

	dtos := make([]UpdateRequestCardDTO, 0, len(cards))
	for _, c := range cards {
		dtos = append(dtos, h.toCardDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": dtos})
}

// GetUpdateRequest returns one request in any status, diffed against the
// current baseline.
// GET /api/update-requests/{id}
func (h *Handler) GetUpdateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.Store.GetUpdateRequest(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get update request", err)
		return
	}

	baseline, err := h.Store.FetchBaselineProfile(ctx, req.EmployeeID)
	if err != nil {
		h.Logger.Warn("baseline unavailable", "employee_id", req.EmployeeID, "error", err)
	}
	diff, err := reconcile.ReconcileRaw(baseline, req.ChangeSet, req.Kind)
	card := review.Card{Request: *req, Diff: diff, Degraded: baseline == nil, Malformed: err != nil}
	writeJSON(w, http.StatusOK, h.toCardDTO(card))
}

// ApproveUpdateRequest approves a pending update request.
// POST /api/update-requests/{id}/approve
func (h *Handler) ApproveUpdateRequest(w http.ResponseWriter, r *http.Request) {
	d, err := h.updates.Approve(r.Context(), chi.URLParam(r, "id"))
	writeDecision(w, d, err)
}

// RejectUpdateRequest rejects a pending update request. A comment is required.
// POST /api/update-requests/{id}/reject
func (h *Handler) RejectUpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.updates.Reject(r.Context(), chi.URLParam(r, "id"), body.Comment)
	writeDecision(w, d, err)
}

func (h *Handler) toCardDTO(c review.Card) UpdateRequestCardDTO {
	return UpdateRequestCardDTO{
		Request:   toUpdateRequestDTO(c.Request),
		Diff:      h.Presenter.Present(c.Diff),
		Degraded:  c.Degraded,
		Malformed: c.Malformed,
	}
}

// =============================================================================
// HOLIDAY REQUEST ENDPOINTS
// =============================================================================

// ListPendingHolidayRequests returns pending holiday change requests.
// GET /api/holiday-requests/pending
func (h *Handler) ListPendingHolidayRequests(w http.ResponseWriter, r *http.Request) {
	if err := h.holidays.Reload(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to load pending holiday requests", err)
		return
	}
	pending := h.holidays.Pending()
	dtos := make([]HolidayRequestDTO, 0, len(pending))
	for _, req := range pending {
		dtos = append(dtos, toHolidayRequestDTO(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": dtos})
}

// ApproveHolidayRequest approves a holiday change request and applies it.
// POST /api/holiday-requests/{id}/approve
func (h *Handler) ApproveHolidayRequest(w http.ResponseWriter, r *http.Request) {
	d, err := h.holidays.Approve(r.Context(), chi.URLParam(r, "id"))
	writeDecision(w, d, err)
}

// RejectHolidayRequest rejects a holiday change request.
// POST /api/holiday-requests/{id}/reject
func (h *Handler) RejectHolidayRequest(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.holidays.Reject(r.Context(), chi.URLParam(r, "id"), body.Comment)
	writeDecision(w, d, err)
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// GetProfile returns the stored baseline of an employee.
// GET /api/employees/{id}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.FetchBaselineProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SaveProfile replaces the stored baseline of an employee.
// PUT /api/employees/{id}/profile
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var b profile.Baseline
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	b.EmployeeID = chi.URLParam(r, "id")
	if err := h.Store.SaveProfile(r.Context(), b); err != nil {
		writeDomainError(w, "Failed to save profile", err)
		return
	}
	saved, err := h.Store.FetchBaselineProfile(r.Context(), b.EmployeeID)
	if err != nil {
		writeDomainError(w, "Failed to get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// SubmitUpdateRequest stores a profile edit for review.
// POST /api/employees/{id}/update-requests
func (h *Handler) SubmitUpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := profile.DecodeChangeSet(body.ChangeSet); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid change-set", err)
		return
	}

	req, err := h.Store.SubmitUpdateRequest(r.Context(), profile.UpdateRequest{
		EmployeeID:   chi.URLParam(r, "id"),
		EmployeeName: body.EmployeeName,
		Kind:         body.RequestKind,
		ChangeSet:    body.ChangeSet,
	})
	if err != nil {
		writeDomainError(w, "Failed to submit update request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUpdateRequestDTO(req))
}

// SubmitHolidayRequest stores holiday calendar changes for review.
// POST /api/employees/{id}/holiday-requests
func (h *Handler) SubmitHolidayRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Store.SubmitHolidayRequest(r.Context(), profile.HolidayChangeRequest{
		EmployeeID:   chi.URLParam(r, "id"),
		EmployeeName: body.EmployeeName,
		Entries:      body.Entries,
	})
	if err != nil {
		writeDomainError(w, "Failed to submit holiday request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayRequestDTO(req))
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns the holiday calendar.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": holidays})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var verr *review.ValidationError
	var terr *review.TransportError
	switch {
	case errors.As(err, &verr), errors.Is(err, store.ErrInvalidRequest):
		return http.StatusBadRequest
	case profile.IsNotFound(err):
		return http.StatusNotFound
	case profile.IsConflict(err):
		return http.StatusConflict
	case errors.As(err, &terr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

// writeDecision renders a controller outcome. A reload failure after a
// successful decision is still a success, reported with a warning.
func writeDecision(w http.ResponseWriter, d review.Decision, err error) {
	switch {
	case err == nil && d.Ignored:
		writeJSON(w, http.StatusAccepted, DecisionDTO{Decision: d})
	case err == nil:
		writeJSON(w, http.StatusOK, DecisionDTO{Decision: d})
	case errors.Is(err, review.ErrReloadFailed):
		writeJSON(w, http.StatusOK, DecisionDTO{Decision: d, Warning: err.Error()})
	default:
		writeDomainError(w, "Decision failed", err)
	}
}
