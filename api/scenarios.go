/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	review queues. Each scenario saves baseline profiles and submits the
	requests an admin would then approve or reject.

AVAILABLE SCENARIOS:

	profile-edits:    Scalar, address, document and photo edits, including
	                  an address deletion, a request whose employee has no
	                  stored profile and a malformed change-set
	holiday-calendar: A seeded calendar and two holiday change requests
	full-review:      Both of the above

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Save baseline profiles / holidays
 3. Submit pending requests with staggered creation times

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "profile-edits"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/profile-review/profile"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "profile-edits",
		Name:        "Profile Edits",
		Description: "Pending profile update requests covering every kind of change",
		Category:    "profile",
	},
	{
		ID:          "holiday-calendar",
		Name:        "Holiday Calendar",
		Description: "Company calendar with pending add/remove holiday requests",
		Category:    "holiday",
	},
	{
		ID:          "full-review",
		Name:        "Full Review Queue",
		Description: "Profile edits and holiday requests together",
		Category:    "mixed",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var loaders []func(context.Context, time.Time) error
	switch req.ScenarioID {
	case "profile-edits":
		loaders = append(loaders, h.loadProfileEditsScenario)
	case "holiday-calendar":
		loaders = append(loaders, h.loadHolidayCalendarScenario)
	case "full-review":
		loaders = append(loaders, h.loadProfileEditsScenario, h.loadHolidayCalendarScenario)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setCurrentScenario("")

	now := time.Now().UTC()
	for _, load := range loaders {
		if err := load(ctx, now); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
			return
		}
	}

	h.setCurrentScenario(req.ScenarioID)
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadProfileEditsScenario seeds three employees and five update requests.
//
//	EMP-001 Asha:  phone + bio edit, CURRENT address moved, OFFICE added
//	EMP-002 Ravi:  deletes the PERMANENT address
//	EMP-003 Meera: new document and photo, submitted as an encoded string
//	EMP-004 Kiran: no stored profile, so the card is degraded
//	EMP-001 Asha:  malformed change-set
func (h *Handler) loadProfileEditsScenario(ctx context.Context, now time.Time) error {
	profiles := []profile.Baseline{
		{
			EmployeeID: "EMP-001",
			Fields: map[string]any{
				"fullName":    "Asha Rao",
				"phone":       "9876543210",
				"designation": "Engineer",
				"bio":         "Backend engineer working on payroll integrations.",
			},
			Addresses: []profile.AddressRecord{
				{AddressID: "ADDR-001-C", AddressType: profile.AddressCurrent, HouseNo: "12B", StreetName: "MG Road", City: "Pune", State: "MH", Country: "India", Pincode: "411001"},
				{AddressID: "ADDR-001-P", AddressType: profile.AddressPermanent, HouseNo: "4", StreetName: "Temple Street", City: "Nagpur", State: "MH", Country: "India", Pincode: "440001"},
			},
			Documents: []profile.DocumentRecord{
				{DocumentID: "DOC-001-PAN", DocType: "PAN", FileURL: "https://files.example.com/emp-001/pan.pdf", UploadedAt: "2025-06-01", Verified: true},
			},
			PhotoURL: "https://files.example.com/emp-001/photo.jpg",
		},
		{
			EmployeeID: "EMP-002",
			Fields:     map[string]any{"fullName": "Ravi Kumar", "phone": "9000000002"},
			Addresses: []profile.AddressRecord{
				{AddressID: "ADDR-002-C", AddressType: profile.AddressCurrent, HouseNo: "7", StreetName: "Lake Road", City: "Bengaluru", Country: "India"},
				{AddressID: "ADDR-002-P", AddressType: profile.AddressPermanent, HouseNo: "19", StreetName: "Station Road", City: "Mysuru", Country: "India"},
			},
		},
		{
			EmployeeID: "EMP-003",
			Fields:     map[string]any{"fullName": "Meera Iyer", "experienceYears": 6},
			PhotoURL:   "https://files.example.com/emp-003/old.png",
		},
	}
	for _, p := range profiles {
		if err := h.Store.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("save profile %s: %w", p.EmployeeID, err)
		}
	}

	requests := []profile.UpdateRequest{
		{
			EmployeeID:   "EMP-001",
			EmployeeName: "Asha Rao",
			ChangeSet: profile.RawChangeSet(`{
				"phone": "9123456780",
				"bio": "Backend engineer working on payroll and benefits integrations.",
				"designation": "Engineer",
				"addresses": [
					{"addressType": "CURRENT", "houseNo": "12B", "streetName": "FC Road", "city": "Pune", "state": "MH", "country": "India", "pincode": "411004"},
					{"addressType": "PERMANENT", "houseNo": "4", "streetName": "Temple Street", "city": "Nagpur", "state": "MH", "country": "India", "pincode": "440001"},
					{"addressType": "OFFICE", "streetName": "Baner Road", "city": "Pune"}
				]
			}`),
		},
		{
			EmployeeID:   "EMP-002",
			EmployeeName: "Ravi Kumar",
			Kind:         profile.KindAddressDelete,
			ChangeSet:    profile.RawChangeSet(`{"addressId": "ADDR-002-P"}`),
		},
		{
			EmployeeID:   "EMP-003",
			EmployeeName: "Meera Iyer",
			ChangeSet: profile.EncodedChangeSet(`{"experienceYears": 7, "documents": [` +
				`{"docType": "AADHAAR", "fileUrl": "https://files.example.com/emp-003/aadhaar.pdf", "uploadedAt": "2026-02-10"}],` +
				`"profilePhotoUrl": "https://files.example.com/emp-003/new.png"}`),
		},
		{
			EmployeeID:   "EMP-004",
			EmployeeName: "Kiran Shah",
			ChangeSet:    profile.RawChangeSet(`{"phone": "9555555555", "city": "Chennai"}`),
		},
		{
			EmployeeID:   "EMP-001",
			EmployeeName: "Asha Rao",
			ChangeSet:    profile.EncodedChangeSet(`{"phone": "98765`),
		},
	}
	for i, r := range requests {
		r.CreatedAt = now.Add(time.Duration(i-len(requests)) * time.Minute)
		if _, err := h.Store.SubmitUpdateRequest(ctx, r); err != nil {
			return fmt.Errorf("submit update request for %s: %w", r.EmployeeID, err)
		}
	}
	return nil
}

// loadHolidayCalendarScenario seeds the calendar and two holiday requests.
func (h *Handler) loadHolidayCalendarScenario(ctx context.Context, now time.Time) error {
	year := now.Year()
	day := func(month time.Month, d int) string {
		return time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}

	holidays := []profile.Holiday{
		{Date: day(time.January, 1), Name: "New Year's Day"},
		{Date: day(time.January, 26), Name: "Republic Day"},
		{Date: day(time.August, 15), Name: "Independence Day"},
		{Date: day(time.October, 2), Name: "Gandhi Jayanti"},
	}
	for _, hol := range holidays {
		if _, err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return fmt.Errorf("save holiday %s: %w", hol.Name, err)
		}
	}

	requests := []profile.HolidayChangeRequest{
		{
			EmployeeID:   "EMP-010",
			EmployeeName: "Farah Khan",
			Entries: []profile.HolidayEntry{
				{UpdateType: profile.HolidayAdd, HolidayName: "Holi", HolidayDate: day(time.March, 4)},
				{UpdateType: profile.HolidayAdd, HolidayName: "Diwali", HolidayDate: day(time.November, 8)},
			},
		},
		{
			EmployeeID:   "EMP-011",
			EmployeeName: "Tom Mathew",
			Entries: []profile.HolidayEntry{
				{UpdateType: profile.HolidayRemove, HolidayName: "New Year's Day", HolidayDate: day(time.January, 1)},
				{UpdateType: profile.HolidayAdd, HolidayName: "Onam", HolidayDate: day(time.August, 26)},
			},
		},
	}
	for i, r := range requests {
		r.CreatedAt = now.Add(time.Duration(i-len(requests)) * time.Minute)
		if _, err := h.Store.SubmitHolidayRequest(ctx, r); err != nil {
			return fmt.Errorf("submit holiday request for %s: %w", r.EmployeeID, err)
		}
	}
	return nil
}
