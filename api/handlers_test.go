/*
handlers_test.go - HTTP tests for the review API

Tests for:
- Pending update request cards (diff, degraded, malformed)
- Approve / reject decisions and their status codes
- Holiday request approval applying calendar changes
- Submissions, profiles and error mapping
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/review"
	"github.com/warp/profile-review/store/sqlite"
)

func setupTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := NewHandler(s, Options{})
	return h, NewRouter(h, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type pendingUpdates struct {
	Requests []UpdateRequestCardDTO `json:"requests"`
}

type pendingHolidays struct {
	Requests []HolidayRequestDTO `json:"requests"`
}

func loadProfileEdits(t *testing.T, h *Handler) {
	t.Helper()
	require.NoError(t, h.loadProfileEditsScenario(context.Background(), time.Now().UTC()))
}

// =============================================================================
// UPDATE REQUESTS
// =============================================================================

func TestListPendingUpdateRequests_Cards(t *testing.T) {
	// GIVEN: the profile-edits scenario
	h, router := setupTestHandler(t)
	loadProfileEdits(t, h)

	// WHEN: the admin opens the pending list
	rec := doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")

	// THEN: every request has a card, oldest first
	require.Equal(t, http.StatusOK, rec.Code)
	cards := decode[pendingUpdates](t, rec).Requests
	require.Len(t, cards, 5)

	// Scalar and address edits.
	asha := cards[0]
	assert.Equal(t, "EMP-001", asha.Request.EmployeeID)
	require.Len(t, asha.Diff.Fields, 2)
	assert.Equal(t, "Phone", asha.Diff.Fields[0].Label)
	assert.Equal(t, "9876543210", asha.Diff.Fields[0].Old.Raw)
	assert.Equal(t, "9123456780", asha.Diff.Fields[0].New.Raw)
	assert.Equal(t, "Bio", asha.Diff.Fields[1].Label)
	assert.True(t, asha.Diff.Fields[1].New.IsLongText)
	assert.NotEmpty(t, asha.Diff.Fields[1].Inline)
	require.Len(t, asha.Diff.Addresses, 2)
	assert.Equal(t, profile.AddressCurrent, asha.Diff.Addresses[0].AddressType)
	assert.Len(t, asha.Diff.Addresses[0].Rows, 2)
	assert.Equal(t, profile.AddressOffice, asha.Diff.Addresses[1].AddressType)
	assert.False(t, asha.Degraded)

	// Address deletion collapses to one removed section.
	ravi := cards[1]
	assert.Equal(t, profile.KindAddressDelete, ravi.Request.RequestKind)
	require.Len(t, ravi.Diff.Addresses, 1)
	assert.True(t, ravi.Diff.Addresses[0].Removed)
	assert.Equal(t, profile.AddressPermanent, ravi.Diff.Addresses[0].AddressType)

	// Encoded change-set with documents and the legacy photo key.
	meera := cards[2]
	require.Len(t, meera.Diff.Fields, 1)
	assert.Equal(t, "6", meera.Diff.Fields[0].Old.Raw)
	assert.Equal(t, "7", meera.Diff.Fields[0].New.Raw)
	require.Len(t, meera.Diff.Documents, 1)
	assert.Equal(t, "AADHAAR", meera.Diff.Documents[0].DocType)
	require.NotNil(t, meera.Diff.Photo)
	assert.Equal(t, "https://files.example.com/emp-003/new.png", meera.Diff.Photo.New.Raw)

	// No stored profile.
	kiran := cards[3]
	assert.True(t, kiran.Degraded)
	require.Len(t, kiran.Diff.Fields, 2)
	assert.Equal(t, "", kiran.Diff.Fields[0].Old.Raw)

	// Malformed change-set renders as an empty diff.
	broken := cards[4]
	assert.True(t, broken.Malformed)
	assert.True(t, broken.Diff.Empty)
}

func TestGetUpdateRequest(t *testing.T) {
	h, router := setupTestHandler(t)
	loadProfileEdits(t, h)

	cards := decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	id := cards[1].Request.RequestID

	rec := doRequest(t, router, http.MethodGet, "/api/update-requests/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[UpdateRequestCardDTO](t, rec)
	assert.Equal(t, id, card.Request.RequestID)
	require.Len(t, card.Diff.Addresses, 1)

	rec = doRequest(t, router, http.MethodGet, "/api/update-requests/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveUpdateRequest(t *testing.T) {
	h, router := setupTestHandler(t)
	loadProfileEdits(t, h)
	cards := decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	id := cards[0].Request.RequestID

	rec := doRequest(t, router, http.MethodPost, "/api/update-requests/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decode[DecisionDTO](t, rec)
	assert.Equal(t, profile.StatusApproved, d.Status)
	assert.Equal(t, 4, d.Pending)
	assert.False(t, d.Ignored)

	// THEN: the request left the queue and a second decision conflicts
	cards = decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	assert.Len(t, cards, 4)

	rec = doRequest(t, router, http.MethodPost, "/api/update-requests/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/update-requests/nope/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectUpdateRequest(t *testing.T) {
	h, router := setupTestHandler(t)
	loadProfileEdits(t, h)
	cards := decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	id := cards[4].Request.RequestID
	path := "/api/update-requests/" + id + "/reject"

	// Blank comment: rejected locally, request stays pending.
	rec := doRequest(t, router, http.MethodPost, path, `{"comment": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "comment")

	rec = doRequest(t, router, http.MethodPost, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, path, `{"comment": "Change-set is unreadable, please resubmit"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, profile.StatusRejected, decode[DecisionDTO](t, rec).Status)

	got, err := h.Store.GetUpdateRequest(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Change-set is unreadable, please resubmit", got.AdminComment)
}

func TestSubmitUpdateRequest(t *testing.T) {
	_, router := setupTestHandler(t)

	// Object form.
	rec := doRequest(t, router, http.MethodPost, "/api/employees/EMP-100/update-requests",
		`{"employeeName": "Lata", "changeSet": {"phone": "1"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[UpdateRequestDTO](t, rec)
	assert.Equal(t, "EMP-100", created.EmployeeID)
	assert.Equal(t, profile.StatusPending, created.Status)
	assert.Equal(t, profile.KindFieldUpdate, created.RequestKind)

	// Encoded-string form.
	rec = doRequest(t, router, http.MethodPost, "/api/employees/EMP-100/update-requests",
		`{"changeSet": "{\"phone\": \"2\"}"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Undecodable change-set is refused at submission.
	rec = doRequest(t, router, http.MethodPost, "/api/employees/EMP-100/update-requests",
		`{"changeSet": "{oops"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/employees/EMP-100/update-requests",
		`{"requestKind": "MERGE", "changeSet": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cards := decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	require.Len(t, cards, 2)
	assert.True(t, cards[0].Degraded)
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

func TestHolidayRequests_ApproveAppliesEntries(t *testing.T) {
	h, router := setupTestHandler(t)
	now := time.Now().UTC()
	require.NoError(t, h.loadHolidayCalendarScenario(context.Background(), now))

	rec := doRequest(t, router, http.MethodGet, "/api/holiday-requests/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[pendingHolidays](t, rec).Requests
	require.Len(t, pending, 2)
	require.Len(t, pending[1].Entries, 2)
	assert.Equal(t, "REMOVE", string(pending[1].Entries[0].Kind))

	// WHEN: the second request is approved
	rec = doRequest(t, router, http.MethodPost, "/api/holiday-requests/"+pending[1].RequestID+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[DecisionDTO](t, rec).Pending)

	// THEN: New Year's Day is gone and Onam was added
	rec = doRequest(t, router, http.MethodGet, "/api/holidays", "")
	require.Equal(t, http.StatusOK, rec.Code)
	holidays := decode[struct {
		Holidays []profile.Holiday `json:"holidays"`
	}](t, rec).Holidays
	names := make([]string, 0, len(holidays))
	for _, hol := range holidays {
		names = append(names, hol.Name)
	}
	assert.Equal(t, []string{"Republic Day", "Independence Day", "Onam", "Gandhi Jayanti"}, names)

	// Reject the other one.
	rec = doRequest(t, router, http.MethodPost, "/api/holiday-requests/"+pending[0].RequestID+"/reject", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/holiday-requests/"+pending[0].RequestID+"/reject", `{"comment": "Use the optional holiday list"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[DecisionDTO](t, rec).Pending)
}

func TestSubmitHolidayRequest(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doRequest(t, router, http.MethodPost, "/api/employees/EMP-200/holiday-requests",
		`{"employeeName": "Joe", "entries": [{"updateType": "ADD_HOLIDAY", "holidayName": "Pongal", "holidayDate": "2026-01-14"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[HolidayRequestDTO](t, rec)
	require.Len(t, created.Entries, 1)
	assert.Equal(t, "Pongal", created.Entries[0].HolidayName)

	rec = doRequest(t, router, http.MethodPost, "/api/employees/EMP-200/holiday-requests", `{"entries": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PROFILES & SCENARIOS
// =============================================================================

func TestProfileEndpoints(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doRequest(t, router, http.MethodGet, "/api/employees/EMP-300/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/employees/EMP-300/profile",
		`{"fields": {"fullName": "Nina", "age": 31}, "addresses": [{"addressType": "CURRENT", "city": "Delhi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/employees/EMP-300/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[profile.Baseline](t, rec)
	assert.Equal(t, "EMP-300", b.EmployeeID)
	assert.Equal(t, "Nina", b.Fields["fullName"])
	require.Len(t, b.Addresses, 1)
	assert.NotEmpty(t, b.Addresses[0].AddressID)
}

func TestScenarios(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doRequest(t, router, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "full-review"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "full-review", decode[ScenarioDTO](t, rec).ID)

	updates := decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	holidays := decode[pendingHolidays](t, doRequest(t, router, http.MethodGet, "/api/holiday-requests/pending", "")).Requests
	assert.Len(t, updates, 5)
	assert.Len(t, holidays, 2)

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	updates = decode[pendingUpdates](t, doRequest(t, router, http.MethodGet, "/api/update-requests/pending", "")).Requests
	assert.Empty(t, updates)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestWriteDecision(t *testing.T) {
	d := review.Decision{RequestID: "R1", Workflow: review.WorkflowUpdates, Status: profile.StatusApproved}

	tests := []struct {
		name     string
		decision review.Decision
		err      error
		want     int
		warning  bool
	}{
		{"approved", d, nil, http.StatusOK, false},
		{"ignored", review.Decision{RequestID: "R1", Ignored: true}, nil, http.StatusAccepted, false},
		{"reload failed", d, fmt.Errorf("%w: boom", review.ErrReloadFailed), http.StatusOK, true},
		{"validation", review.Decision{}, &review.ValidationError{RequestID: "R1", Field: "comment", Err: review.ErrEmptyComment}, http.StatusBadRequest, false},
		{"transport", review.Decision{}, &review.TransportError{Op: "approve", RequestID: "R1", Err: errors.New("502 bad gateway")}, http.StatusBadGateway, false},
		{"not pending", review.Decision{}, &review.TransportError{Op: "approve", RequestID: "R1", Err: profile.ErrNotPending}, http.StatusConflict, false},
		{"invalid transition", review.Decision{}, profile.ErrInvalidTransition, http.StatusConflict, false},
		{"unexpected", review.Decision{}, errors.New("disk full"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDecision(rec, tt.decision, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			if tt.warning {
				assert.NotEmpty(t, decode[DecisionDTO](t, rec).Warning)
			}
		})
	}
}
