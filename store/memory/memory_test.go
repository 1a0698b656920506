package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
	"github.com/warp/profile-review/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestMemory_FetchReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := New()
	require.NoError(t, m.SaveProfile(ctx, profile.Baseline{
		EmployeeID: "E1",
		Fields:     map[string]any{"phone": "1"},
		Addresses:  []profile.AddressRecord{{AddressType: profile.AddressCurrent, City: "Pune"}},
	}))

	b, err := m.FetchBaselineProfile(ctx, "E1")
	require.NoError(t, err)
	b.Fields["phone"] = "2"
	b.Addresses[0].City = "Goa"

	again, err := m.FetchBaselineProfile(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "1", again.Fields["phone"])
	assert.Equal(t, "Pune", again.Addresses[0].City)
	assert.NotEmpty(t, again.Addresses[0].AddressID)
}
