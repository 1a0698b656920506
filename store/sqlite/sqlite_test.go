package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
	"github.com/warp/profile-review/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "review.db")

	s, err := New(path)
	require.NoError(t, err)
	r, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{
		EmployeeID: "E1",
		ChangeSet:  profile.EncodedChangeSet(`{"phone":"1"}`),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetUpdateRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Equal(t, profile.StatusPending, got.Status)
	assert.Equal(t, string(profile.EncodedChangeSet(`{"phone":"1"}`)), string(got.ChangeSet))
}

func TestSQLite_NullChangeSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{EmployeeID: "E1"})
	require.NoError(t, err)

	got, err := s.GetUpdateRequest(ctx, r.RequestID)
	require.NoError(t, err)
	assert.Nil(t, got.ChangeSet)
}

func TestSQLite_DuplicateRequestID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SubmitUpdateRequest(ctx, profile.UpdateRequest{RequestID: "R1", EmployeeID: "E1"})
	require.NoError(t, err)
	_, err = s.SubmitUpdateRequest(ctx, profile.UpdateRequest{RequestID: "R1", EmployeeID: "E1"})
	assert.ErrorIs(t, err, store.ErrInvalidRequest)
}
