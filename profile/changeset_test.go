package profile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/profile-review/profile"
)

func TestDecodeChangeSet_ObjectKeepsFieldOrder(t *testing.T) {
	raw := profile.RawChangeSet(`{"lastName":"Rao","city":"Mumbai","age":31}`)

	cs, err := profile.DecodeChangeSet(raw)
	require.NoError(t, err)

	require.Len(t, cs.Fields, 3)
	assert.Equal(t, "lastName", cs.Fields[0].Name)
	assert.Equal(t, "city", cs.Fields[1].Name)
	assert.Equal(t, "age", cs.Fields[2].Name)
	assert.Equal(t, json.Number("31"), cs.Fields[2].Value)
	assert.False(t, cs.HasAddresses)
}

func TestDecodeChangeSet_EncodedString(t *testing.T) {
	raw := profile.EncodedChangeSet(`{"city":"Mumbai","photoUrl":"https://cdn/p.png"}`)

	cs, err := profile.DecodeChangeSet(raw)
	require.NoError(t, err)

	v, ok := cs.Field("city")
	require.True(t, ok)
	assert.Equal(t, "Mumbai", v)
	assert.Equal(t, "https://cdn/p.png", cs.PhotoURL)
	_, ok = cs.Field("photoUrl")
	assert.False(t, ok, "photo key is reserved")
}

func TestDecodeChangeSet_Malformed(t *testing.T) {
	cases := map[string]profile.RawChangeSet{
		"broken encoded string": profile.EncodedChangeSet(`{"city": "Mum`),
		"encoded non-object":    profile.EncodedChangeSet(`[1,2]`),
		"empty encoded string":  profile.EncodedChangeSet(``),
		"raw garbage":           profile.RawChangeSet(`{city: Pune}`),
		"addresses not a list":  profile.RawChangeSet(`{"addresses":{"addressType":"OFFICE"}}`),
		"trailing data":         profile.RawChangeSet(`{"city":"Pune"} {}`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			cs, err := profile.DecodeChangeSet(raw)
			require.ErrorIs(t, err, profile.ErrChangeSetMalformed)
			assert.Empty(t, cs.Fields)
			assert.False(t, cs.HasAddresses)
		})
	}
}

func TestDecodeChangeSet_NullIsEmpty(t *testing.T) {
	for _, raw := range []profile.RawChangeSet{nil, profile.RawChangeSet(`null`), profile.RawChangeSet("  ")} {
		cs, err := profile.DecodeChangeSet(raw)
		require.NoError(t, err)
		assert.Empty(t, cs.Fields)
	}
}

func TestDecodeChangeSet_Addresses(t *testing.T) {
	raw := profile.RawChangeSet(`{
		"addresses": [
			{"addressId": 7, "addressType": "OFFICE", "city": "Pune", "pincode": 411001},
			{"addressType": "CURRENT", "isDeleted": true}
		]
	}`)

	cs, err := profile.DecodeChangeSet(raw)
	require.NoError(t, err)

	require.True(t, cs.HasAddresses)
	require.Len(t, cs.Addresses, 2)
	assert.Equal(t, "7", cs.Addresses[0].AddressID)
	assert.Equal(t, profile.AddressOffice, cs.Addresses[0].AddressType)
	assert.Equal(t, "411001", cs.Addresses[0].Pincode)
	assert.False(t, cs.Addresses[0].IsDeleted)
	assert.True(t, cs.Addresses[1].IsDeleted)
}

func TestDecodeChangeSet_EmptyAddressListIsPresent(t *testing.T) {
	cs, err := profile.DecodeChangeSet(profile.RawChangeSet(`{"addresses":[]}`))
	require.NoError(t, err)
	assert.True(t, cs.HasAddresses)
	assert.Empty(t, cs.Addresses)
}

func TestDecodeChangeSet_DeletionReferenceAndDocuments(t *testing.T) {
	raw := profile.RawChangeSet(`{
		"addressId": "addr-2",
		"documents": [{"id": "doc-9", "docType": "PAN"}, {"docType": "AADHAAR", "fileUrl": "s3://a.pdf", "verified": false}]
	}`)

	cs, err := profile.DecodeChangeSet(raw)
	require.NoError(t, err)

	assert.Equal(t, "addr-2", cs.AddressID)
	require.Len(t, cs.Documents, 2)
	assert.Equal(t, "doc-9", cs.Documents[0].DocumentID)
	assert.Equal(t, "s3://a.pdf", cs.Documents[1].FileURL)
}

func TestDecodeChangeSet_LegacyPhotoKey(t *testing.T) {
	cs, err := profile.DecodeChangeSet(profile.RawChangeSet(`{"profilePhotoUrl":"old-key.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "old-key.png", cs.PhotoURL)

	cs, err = profile.DecodeChangeSet(profile.RawChangeSet(`{"profilePhotoUrl":"old-key.png","photoUrl":"new-key.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "new-key.png", cs.PhotoURL, "current key takes precedence")
}

func TestDecodeChangeSet_DuplicateKeyLastWins(t *testing.T) {
	cs, err := profile.DecodeChangeSet(profile.RawChangeSet(`{"city":"Pune","state":"MH","city":"Goa"}`))
	require.NoError(t, err)
	require.Len(t, cs.Fields, 2)
	assert.Equal(t, profile.Field{Name: "city", Value: "Goa"}, cs.Fields[0])
}

func TestRawChangeSet_MarshalJSON(t *testing.T) {
	req := struct {
		ChangeSet profile.RawChangeSet `json:"changeSet"`
	}{ChangeSet: profile.RawChangeSet(`{bad`)}

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"changeSet":"{bad"}`, string(b))

	var back struct {
		ChangeSet profile.RawChangeSet `json:"changeSet"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"changeSet":{"city":"Pune"}}`), &back))
	assert.Equal(t, `{"city":"Pune"}`, string(back.ChangeSet))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", profile.Stringify(nil))
	assert.Equal(t, "Pune", profile.Stringify("Pune"))
	assert.Equal(t, "true", profile.Stringify(true))
	assert.Equal(t, "100", profile.Stringify(json.Number("100.0")))
	assert.Equal(t, "100", profile.Stringify(100.0))
	assert.Equal(t, "1.5", profile.Stringify(json.Number("1.50")))
	assert.Equal(t, "42", profile.Stringify(42))
	assert.Equal(t, `{"a":1}`, profile.Stringify(map[string]any{"a": 1}))
}

func TestStringify_ExponentNotation(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{json.Number("1e20"), "100000000000000000000"},
		{json.Number("1e21"), "1e+21"},
		{json.Number("12.5e21"), "1.25e+22"},
		{json.Number("-1e21"), "-1e+21"},
		{json.Number("0.000001"), "0.000001"},
		{json.Number("1e-7"), "1e-7"},
		{json.Number("0.00000015"), "1.5e-7"},
		{json.Number("1e4000000"), "1e+4000000"},
		{json.Number("0e4000000"), "0"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, profile.Stringify(tt.in), "%v", tt.in)
	}
}

func TestDecodeChangeSet_HugeExponentStaysShort(t *testing.T) {
	// GIVEN: a tiny submission whose number has an enormous exponent
	raw := profile.RawChangeSet(`{"addressId":1e100000000,"pincode":1e-100000000,` +
		`"addresses":[{"addressType":"CURRENT","pincode":9e99999999}]}`)

	// WHEN: it is decoded
	cs, err := profile.DecodeChangeSet(raw)

	// THEN: the normalized values are as short as the input
	require.NoError(t, err)
	assert.Equal(t, "1e+100000000", cs.AddressID)
	assert.Equal(t, "1e-100000000", profile.Stringify(cs.Fields[0].Value))
	require.Len(t, cs.Addresses, 1)
	assert.Equal(t, "9e+99999999", cs.Addresses[0].Pincode)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, profile.StatusPending.CanTransition(profile.StatusApproved))
	assert.True(t, profile.StatusPending.CanTransition(profile.StatusRejected))
	assert.False(t, profile.StatusPending.CanTransition(profile.StatusPending))
	assert.False(t, profile.StatusApproved.CanTransition(profile.StatusRejected))
	assert.False(t, profile.StatusRejected.CanTransition(profile.StatusApproved))
	assert.True(t, profile.StatusApproved.IsTerminal())
	assert.False(t, profile.StatusPending.IsTerminal())
}
