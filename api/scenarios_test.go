/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Baseline profiles are saved
	- Pending requests are submitted in creation order
	- The holiday calendar is seeded

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"testing"
	"time"

	"github.com/warp/profile-review/profile"
)

func TestScenario_ProfileEdits(t *testing.T) {
	// GIVEN: Profile edits scenario
	// WHEN: Loading the scenario
	// THEN: Three profiles and five pending update requests should exist

	handler, _ := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadProfileEditsScenario(ctx, time.Now().UTC()); err != nil {
		t.Fatalf("Failed to load profile-edits scenario: %v", err)
	}

	for _, id := range []string{"EMP-001", "EMP-002", "EMP-003"} {
		if _, err := handler.Store.FetchBaselineProfile(ctx, id); err != nil {
			t.Errorf("Expected profile %s, got error: %v", id, err)
		}
	}
	if _, err := handler.Store.FetchBaselineProfile(ctx, "EMP-004"); !profile.IsNotFound(err) {
		t.Errorf("Expected EMP-004 to have no profile, got %v", err)
	}

	pending, err := handler.Store.ListPendingUpdateRequests(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending requests: %v", err)
	}
	if len(pending) != 5 {
		t.Fatalf("Expected 5 pending requests, got %d", len(pending))
	}

	wantEmployees := []string{"EMP-001", "EMP-002", "EMP-003", "EMP-004", "EMP-001"}
	for i, r := range pending {
		if r.EmployeeID != wantEmployees[i] {
			t.Errorf("Request %d: expected employee %s, got %s", i, wantEmployees[i], r.EmployeeID)
		}
		if r.Status != profile.StatusPending {
			t.Errorf("Request %d: expected PENDING, got %s", i, r.Status)
		}
		if i > 0 && r.CreatedAt.Before(pending[i-1].CreatedAt) {
			t.Errorf("Request %d created before request %d", i, i-1)
		}
	}
	if pending[1].Kind != profile.KindAddressDelete {
		t.Errorf("Expected address deletion for EMP-002, got %s", pending[1].Kind)
	}
	if _, err := profile.DecodeChangeSet(pending[4].ChangeSet); err == nil {
		t.Error("Expected the last change-set to be malformed")
	}
}

func TestScenario_HolidayCalendar(t *testing.T) {
	// GIVEN: Holiday calendar scenario
	// WHEN: Loading the scenario
	// THEN: Four holidays and two pending holiday requests should exist

	handler, _ := setupTestHandler(t)
	ctx := context.Background()
	now := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)

	if err := handler.loadHolidayCalendarScenario(ctx, now); err != nil {
		t.Fatalf("Failed to load holiday-calendar scenario: %v", err)
	}

	holidays, err := handler.Store.ListHolidays(ctx)
	if err != nil {
		t.Fatalf("Failed to list holidays: %v", err)
	}
	if len(holidays) != 4 {
		t.Fatalf("Expected 4 holidays, got %d", len(holidays))
	}
	if holidays[0].Date != "2026-01-01" || holidays[0].Name != "New Year's Day" {
		t.Errorf("Expected New Year's Day first, got %+v", holidays[0])
	}

	pending, err := handler.Store.ListPendingHolidayRequests(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending holiday requests: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending holiday requests, got %d", len(pending))
	}
	if pending[0].EmployeeID != "EMP-010" || len(pending[0].Entries) != 2 {
		t.Errorf("Unexpected first request: %+v", pending[0])
	}
	if e := pending[1].Entries[0]; e.UpdateType != profile.HolidayRemove || e.HolidayDate != "2026-01-01" {
		t.Errorf("Expected removal of New Year's Day, got %+v", e)
	}
}

func TestScenario_LoadResetsStore(t *testing.T) {
	// GIVEN: A store with leftover data
	// WHEN: Loading a scenario over it
	// THEN: Only the scenario's data remains

	handler, router := setupTestHandler(t)
	ctx := context.Background()

	if _, err := handler.Store.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "EMP-999"}); err != nil {
		t.Fatalf("Failed to submit request: %v", err)
	}

	rec := doRequest(t, router, "POST", "/api/scenarios/load", `{"scenario_id": "holiday-calendar"}`)
	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	pending, err := handler.Store.ListPendingUpdateRequests(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending requests: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no update requests after load, got %d", len(pending))
	}
	if got := handler.scenario(); got != "holiday-calendar" {
		t.Errorf("Expected current scenario holiday-calendar, got %q", got)
	}
}
