// Package storetest holds the behaviour every store.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
)

// Factory returns an empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

// Run executes the shared suite against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"ProfileRoundTrip", testProfileRoundTrip},
		{"ProfileReplace", testProfileReplace},
		{"ProfileNotFound", testProfileNotFound},
		{"SubmitValidation", testSubmitValidation},
		{"PendingOrder", testPendingOrder},
		{"ChangeSetPreserved", testChangeSetPreserved},
		{"ApproveUpdate", testApproveUpdate},
		{"RejectUpdate", testRejectUpdate},
		{"DecideUnknown", testDecideUnknown},
		{"HolidayApproveAppliesEntries", testHolidayApprove},
		{"HolidayRejectLeavesCalendar", testHolidayReject},
		{"SaveHolidayIdempotent", testSaveHolidayIdempotent},
		{"Reset", testReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleBaseline() profile.Baseline {
	return profile.Baseline{
		EmployeeID: "E1",
		Fields: map[string]any{
			"fullName":   "Asha Rao",
			"phone":      "9876543210",
			"experience": 7,
			"remote":     true,
			"rating":     4.5,
		},
		Addresses: []profile.AddressRecord{
			{AddressID: "A1", AddressType: profile.AddressPermanent, City: "Pune", Country: "India"},
			{AddressID: "A2", AddressType: profile.AddressCurrent, HouseNo: "12B", City: "Mumbai"},
		},
		Documents: []profile.DocumentRecord{
			{DocumentID: "D1", DocType: "PAN", FileURL: "s3://docs/pan.pdf", UploadedAt: "2026-01-02", Verified: true},
		},
		PhotoURL: "s3://photos/e1.png",
	}
}

func testProfileRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	want := sampleBaseline()
	require.NoError(t, s.SaveProfile(ctx, want))

	got, err := s.FetchBaselineProfile(ctx, "E1")
	require.NoError(t, err)

	assert.Equal(t, "E1", got.EmployeeID)
	assert.Equal(t, want.PhotoURL, got.PhotoURL)
	require.Len(t, got.Fields, len(want.Fields))
	for k, v := range want.Fields {
		assert.Equal(t, profile.Stringify(v), profile.Stringify(got.Fields[k]), "field %s", k)
	}
	assert.Equal(t, want.Addresses, got.Addresses)
	assert.Equal(t, want.Documents, got.Documents)
}

func testProfileReplace(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveProfile(ctx, sampleBaseline()))

	next := sampleBaseline()
	next.Fields = map[string]any{"phone": "1111111111"}
	next.Addresses = next.Addresses[:1]
	next.Documents = nil
	next.PhotoURL = ""
	require.NoError(t, s.SaveProfile(ctx, next))

	got, err := s.FetchBaselineProfile(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"phone": "1111111111"}, stringFields(got.Fields))
	assert.Len(t, got.Addresses, 1)
	assert.Empty(t, got.Documents)
	assert.Empty(t, got.PhotoURL)
}

func testProfileNotFound(t *testing.T, s store.Store) {
	_, err := s.FetchBaselineProfile(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func testSubmitValidation(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{})
	assert.ErrorIs(t, err, store.ErrInvalidRequest)

	_, err = s.SubmitHolidayRequest(ctx, profile.HolidayChangeRequest{EmployeeID: "E1"})
	assert.ErrorIs(t, err, store.ErrInvalidRequest)

	_, err = s.SubmitHolidayRequest(ctx, profile.HolidayChangeRequest{
		EmployeeID: "E1",
		Entries:    []profile.HolidayEntry{{UpdateType: "MOVE_HOLIDAY", HolidayDate: "2026-01-01"}},
	})
	assert.ErrorIs(t, err, store.ErrInvalidRequest)

	err = s.SaveProfile(ctx, profile.Baseline{})
	assert.ErrorIs(t, err, store.ErrInvalidRequest)

	pending, err := s.ListPendingUpdateRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func testPendingOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	later, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{
		EmployeeID: "E1", CreatedAt: base.Add(time.Hour), ChangeSet: profile.RawChangeSet(`{"phone":"1"}`),
	})
	require.NoError(t, err)
	earlier, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{
		EmployeeID: "E2", CreatedAt: base, ChangeSet: profile.RawChangeSet(`{"phone":"2"}`),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, later.RequestID)
	assert.Equal(t, profile.StatusPending, later.Status)
	assert.Equal(t, profile.KindFieldUpdate, later.Kind)

	pending, err := s.ListPendingUpdateRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, earlier.RequestID, pending[0].RequestID)
	assert.Equal(t, later.RequestID, pending[1].RequestID)
	assert.True(t, pending[0].CreatedAt.Equal(base))
}

func testChangeSetPreserved(t *testing.T, s store.Store) {
	ctx := context.Background()
	object := profile.RawChangeSet(`{"phone":"222","addresses":[{"addressType":"CURRENT","city":"Pune"}]}`)
	encoded := profile.EncodedChangeSet(string(object))

	a, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "E1", ChangeSet: object, CreatedAt: base})
	require.NoError(t, err)
	b, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{
		EmployeeID: "E1", ChangeSet: encoded, CreatedAt: base.Add(time.Minute), Kind: profile.KindAddressDelete,
	})
	require.NoError(t, err)

	gotA, err := s.GetUpdateRequest(ctx, a.RequestID)
	require.NoError(t, err)
	gotB, err := s.GetUpdateRequest(ctx, b.RequestID)
	require.NoError(t, err)

	assert.Equal(t, profile.KindAddressDelete, gotB.Kind)
	csA, err := profile.DecodeChangeSet(gotA.ChangeSet)
	require.NoError(t, err)
	csB, err := profile.DecodeChangeSet(gotB.ChangeSet)
	require.NoError(t, err)
	assert.Equal(t, csA, csB)
}

func testApproveUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	r, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "E1", ChangeSet: profile.RawChangeSet(`{}`)})
	require.NoError(t, err)

	require.NoError(t, s.ApproveUpdateRequest(ctx, r.RequestID))

	got, err := s.GetUpdateRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, profile.StatusApproved, got.Status)

	pending, err := s.ListPendingUpdateRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Terminal: a second decision is a conflict.
	err = s.ApproveUpdateRequest(ctx, r.RequestID)
	assert.ErrorIs(t, err, profile.ErrNotPending)
	err = s.RejectUpdateRequest(ctx, r.RequestID, "too late")
	assert.ErrorIs(t, err, profile.ErrNotPending)
}

func testRejectUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	r, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "E1", ChangeSet: profile.RawChangeSet(`{}`)})
	require.NoError(t, err)

	require.NoError(t, s.RejectUpdateRequest(ctx, r.RequestID, "photo is blurry"))

	got, err := s.GetUpdateRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, profile.StatusRejected, got.Status)
	assert.Equal(t, "photo is blurry", got.AdminComment)
}

func testDecideUnknown(t *testing.T, s store.Store) {
	ctx := context.Background()
	assert.ErrorIs(t, s.ApproveUpdateRequest(ctx, "nope"), profile.ErrRequestNotFound)
	assert.ErrorIs(t, s.RejectUpdateRequest(ctx, "nope", "x"), profile.ErrRequestNotFound)
	assert.ErrorIs(t, s.ApproveHolidayRequest(ctx, "nope"), profile.ErrRequestNotFound)
	assert.ErrorIs(t, s.RejectHolidayRequest(ctx, "nope", "x"), profile.ErrRequestNotFound)

	_, err := s.GetUpdateRequest(ctx, "nope")
	assert.ErrorIs(t, err, profile.ErrRequestNotFound)
	_, err = s.GetHolidayRequest(ctx, "nope")
	assert.ErrorIs(t, err, profile.ErrRequestNotFound)
}

func testHolidayApprove(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.SaveHoliday(ctx, profile.Holiday{Date: "2026-01-26", Name: "Republic Day"})
	require.NoError(t, err)

	r, err := s.SubmitHolidayRequest(ctx, profile.HolidayChangeRequest{
		EmployeeID:   "E1",
		EmployeeName: "Asha Rao",
		Entries: []profile.HolidayEntry{
			{UpdateType: profile.HolidayAdd, HolidayName: "Holi", HolidayDate: "2026-03-04"},
			{UpdateType: profile.HolidayRemove, HolidayName: "Republic Day", HolidayDate: "2026-01-26"},
		},
	})
	require.NoError(t, err)

	pending, err := s.ListPendingHolidayRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Len(t, pending[0].Entries, 2)
	assert.Equal(t, profile.HolidayAdd, pending[0].Entries[0].UpdateType)

	require.NoError(t, s.ApproveHolidayRequest(ctx, r.RequestID))

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Holi", holidays[0].Name)
	assert.Equal(t, "2026-03-04", holidays[0].Date)
	assert.NotEmpty(t, holidays[0].ID)

	got, err := s.GetHolidayRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, profile.StatusApproved, got.Status)
	assert.ErrorIs(t, s.ApproveHolidayRequest(ctx, r.RequestID), profile.ErrNotPending)
}

func testHolidayReject(t *testing.T, s store.Store) {
	ctx := context.Background()
	r, err := s.SubmitHolidayRequest(ctx, profile.HolidayChangeRequest{
		EmployeeID: "E1",
		Entries:    []profile.HolidayEntry{{UpdateType: profile.HolidayAdd, HolidayName: "Diwali", HolidayDate: "2026-11-08"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.RejectHolidayRequest(ctx, r.RequestID, "not a company holiday"))

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)

	got, err := s.GetHolidayRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, profile.StatusRejected, got.Status)
	assert.Equal(t, "not a company holiday", got.AdminComment)

	pending, err := s.ListPendingHolidayRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func testSaveHolidayIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	first, err := s.SaveHoliday(ctx, profile.Holiday{Date: "2026-08-15", Name: "Independence Day"})
	require.NoError(t, err)
	second, err := s.SaveHoliday(ctx, profile.Holiday{Date: "2026-08-15", Name: "Independence Day"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveProfile(ctx, sampleBaseline()))
	_, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "E1", ChangeSet: profile.RawChangeSet(`{}`)})
	require.NoError(t, err)
	_, err = s.SaveHoliday(ctx, profile.Holiday{Date: "2026-01-01", Name: "New Year"})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	_, err = s.FetchBaselineProfile(ctx, "E1")
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
	pending, err := s.ListPendingUpdateRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func stringFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = profile.Stringify(v)
	}
	return out
}
