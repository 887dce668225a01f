package artifact

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := NewStore(dir, logger)
	require.NoError(t, err, "Failed to create store")
	return s
}

func TestNewStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "temp")
	s := newTestStore(t, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, s.Dir())
}

func TestStore_AllocateIsUnique(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		p := s.Allocate()
		assert.True(t, strings.HasSuffix(p, VideoExt))
		assert.Equal(t, s.Dir(), filepath.Dir(p))
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t, t.TempDir())
	p := s.Allocate()
	require.NoError(t, os.WriteFile(p, []byte("video"), 0o644))

	require.NoError(t, s.Remove(p))
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, s.Remove(p))
}
