package present_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/profile-review/present"
	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/reconcile"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"houseNo":           "House No",
		"pincode":           "Pincode",
		"date_of_birth":     "Date Of Birth",
		"photoURL":          "Photo URL",
		"URLPath":           "URL Path",
		"emergency-contact": "Emergency Contact",
		"address2Line":      "Address2 Line",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, present.Label(in), in)
	}
}

func TestAddressTitle(t *testing.T) {
	assert.Equal(t, "Office", present.AddressTitle(profile.AddressOffice))
	assert.Equal(t, "Permanent", present.AddressTitle(profile.AddressPermanent))
	assert.Equal(t, "Home Town", present.AddressTitle("HOME_TOWN"))
}

func TestPresent_GroupsAddressesByFirstOccurrence(t *testing.T) {
	diff := reconcile.DiffResult{
		AddressDiffs: []reconcile.AddressDiff{
			{AddressType: profile.AddressOffice, Kind: reconcile.KindAdded, FieldChanges: []reconcile.FieldChange{{Field: "houseNo", NewValue: "7"}}},
			{AddressType: profile.AddressCurrent, Kind: reconcile.KindUpdated, FieldChanges: []reconcile.FieldChange{{Field: "city", OldValue: "Pune", NewValue: "Goa"}}},
			{AddressType: profile.AddressOffice, Kind: reconcile.KindAdded, FieldChanges: []reconcile.FieldChange{{Field: "city", NewValue: "Pune"}}},
			{AddressType: profile.AddressPermanent, Kind: reconcile.KindRemoved, FieldChanges: []reconcile.FieldChange{}},
		},
	}

	m := present.Present(diff)

	require.Len(t, m.Addresses, 3)
	office := m.Addresses[0]
	assert.Equal(t, profile.AddressOffice, office.AddressType)
	assert.Equal(t, "Office", office.Title)
	require.Len(t, office.Rows, 2)
	assert.Equal(t, "House No", office.Rows[0].Label)
	assert.Equal(t, reconcile.KindAdded, office.Rows[0].Kind)
	assert.Equal(t, "—", office.Rows[0].Old.Display)
	assert.Equal(t, "", office.Rows[0].Old.Raw)
	assert.False(t, office.Removed)

	assert.Equal(t, profile.AddressCurrent, m.Addresses[1].AddressType)

	permanent := m.Addresses[2]
	assert.True(t, permanent.Removed)
	assert.Empty(t, permanent.Rows)
	assert.False(t, m.Empty)
}

func TestPresent_LongTextFlag(t *testing.T) {
	long := "221B Baker Street, Marylebone"
	diff := reconcile.DiffResult{
		ScalarChanges: []reconcile.FieldChange{
			{Field: "streetName", OldValue: long, NewValue: "221C Baker Street, Marylebone"},
			{Field: "city", OldValue: "Pune", NewValue: "Mumbai"},
			{Field: "exactly", OldValue: "", NewValue: strings.Repeat("x", 18)},
		},
	}

	m := present.Present(diff)

	require.Len(t, m.Fields, 3)
	street := m.Fields[0]
	assert.True(t, street.Old.IsLongText)
	assert.True(t, street.New.IsLongText)
	assert.Equal(t, long, street.Old.Raw, "values are never truncated")
	require.NotEmpty(t, street.Inline)
	var rebuilt strings.Builder
	for _, s := range street.Inline {
		if s.Op != "insert" {
			rebuilt.WriteString(s.Text)
		}
	}
	assert.Equal(t, long, rebuilt.String())

	assert.False(t, m.Fields[1].Old.IsLongText)
	assert.Nil(t, m.Fields[1].Inline)
	assert.False(t, m.Fields[2].New.IsLongText, "threshold is exclusive")
}

func TestPresent_CustomOptions(t *testing.T) {
	p := present.New(present.Options{LongTextThreshold: 3, Placeholder: "n/a"})

	m := p.Present(reconcile.DiffResult{
		ScalarChanges: []reconcile.FieldChange{{Field: "city", NewValue: "Pune"}},
		PhotoChange:   &reconcile.PhotoChange{NewURL: "p.png"},
	})

	assert.Equal(t, "n/a", m.Fields[0].Old.Display)
	assert.True(t, m.Fields[0].New.IsLongText)
	require.NotNil(t, m.Photo)
	assert.Equal(t, "n/a", m.Photo.Old.Display)
	assert.Equal(t, "p.png", m.Photo.New.Display)
}

func TestPresent_DoesNotMutateDiff(t *testing.T) {
	diff := reconcile.DiffResult{
		ScalarChanges: []reconcile.FieldChange{{Field: "city", NewValue: ""}},
		AddressDiffs:  []reconcile.AddressDiff{{AddressType: profile.AddressOffice, Kind: reconcile.KindRemoved, FieldChanges: []reconcile.FieldChange{}}},
		NewDocuments:  []profile.DocumentRecord{{DocType: "AADHAAR_CARD", FileURL: "s3://a"}},
	}
	before := reconcile.DiffResult{
		ScalarChanges: []reconcile.FieldChange{{Field: "city", NewValue: ""}},
		AddressDiffs:  []reconcile.AddressDiff{{AddressType: profile.AddressOffice, Kind: reconcile.KindRemoved, FieldChanges: []reconcile.FieldChange{}}},
		NewDocuments:  []profile.DocumentRecord{{DocType: "AADHAAR_CARD", FileURL: "s3://a"}},
	}

	m := present.Present(diff)

	assert.Equal(t, before, diff)
	require.Len(t, m.Documents, 1)
	assert.Equal(t, "AADHAAR CARD", m.Documents[0].Label)
}

func TestPresent_EmptyDiff(t *testing.T) {
	m := present.Present(reconcile.Reconcile(nil, profile.ChangeSet{}, profile.KindFieldUpdate))

	assert.True(t, m.Empty)
	assert.NotNil(t, m.Fields)
	assert.NotNil(t, m.Addresses)
	assert.NotNil(t, m.Documents)
	assert.Nil(t, m.Photo)
}

func TestHolidayEntries(t *testing.T) {
	req := profile.HolidayChangeRequest{
		RequestID: "h-1",
		Entries: []profile.HolidayEntry{
			{UpdateType: profile.HolidayAdd, HolidayName: "Diwali", HolidayDate: "2025-10-20"},
			{UpdateType: "RENAME_HOLIDAY", HolidayName: "Ignored"},
			{UpdateType: profile.HolidayRemove, HolidayName: "Holi", HolidayDate: "2025-03-14"},
		},
	}

	rows := present.HolidayEntries(req)

	assert.Equal(t, []present.HolidayRow{
		{Kind: present.HolidayAdd, HolidayName: "Diwali", HolidayDate: "2025-10-20"},
		{Kind: present.HolidayRemove, HolidayName: "Holi", HolidayDate: "2025-03-14"},
	}, rows)
}
