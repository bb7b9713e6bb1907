package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenMigrates(t *testing.T) {
	s := setupTestStore(t)

	version, dirty, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	sess, err := s.StartSession(ctx, "pixel 8")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "pixel 8", got.DeviceInfo)
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	sess, err := s.StartSession(ctx, "")
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sess.Status)
	assert.Equal(t, UnknownDevice, sess.DeviceInfo)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Nil(t, got.EndedAt)

	n, err := s.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.now = func() time.Time { return start.Add(90 * time.Second) }
	ended, err := s.EndSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, start.Add(90*time.Second), *ended.EndedAt)
	assert.Equal(t, start, ended.StartedAt)

	n, err = s.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestEndSessionTwice(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	sess, err := s.StartSession(ctx, "browser")
	require.NoError(t, err)
	_, err = s.EndSession(ctx, sess.ID)
	require.NoError(t, err)

	_, err = s.EndSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestUnknownSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.EndSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
