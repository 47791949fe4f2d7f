package uistate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngfw-form/uistate"
)

func openStores(t *testing.T) map[string]uistate.Store {
	t.Helper()
	dir := t.TempDir()

	file, err := uistate.NewFileStore(filepath.Join(dir, "state", "ui.json"))
	require.NoError(t, err)
	mem, err := uistate.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	disk, err := uistate.NewSQLiteStore(filepath.Join(dir, "ui.db"))
	require.NoError(t, err)

	stores := map[string]uistate.Store{
		"memory":        uistate.NewMemoryStore(),
		"file":          file,
		"sqlite-memory": mem,
		"sqlite-file":   disk,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("client-a", "section-speed")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("client-a", "section-speed", uistate.Expanded))
			require.NoError(t, s.Set("client-a", "section-brake", uistate.Collapsed))
			require.NoError(t, s.Set("client-b", "section-speed", uistate.Collapsed))

			st, ok, err := s.Get("client-a", "section-speed")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, uistate.Expanded, st)

			require.NoError(t, s.Set("client-a", "section-speed", uistate.Collapsed))
			all, err := s.All("client-a")
			require.NoError(t, err)
			assert.Equal(t, map[string]uistate.SectionState{
				"section-speed": uistate.Collapsed,
				"section-brake": uistate.Collapsed,
			}, all)

			all, err = s.All("nobody")
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestStoreRejectsInvalidState(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Set("c", "section-speed", uistate.SectionState("open"))
			assert.ErrorIs(t, err, uistate.ErrInvalidState)

			_, ok, err := s.Get("c", "section-speed")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := uistate.NewMemoryStore()
	require.NoError(t, s.Set("c", "section-speed", uistate.Expanded))

	all, err := s.All("c")
	require.NoError(t, err)
	all["section-speed"] = uistate.Collapsed

	st, _, err := s.Get("c", "section-speed")
	require.NoError(t, err)
	assert.Equal(t, uistate.Expanded, st)
}

func TestFileStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.json")

	s, err := uistate.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("c", "section-lights", uistate.Expanded))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind")

	reloaded, err := uistate.NewFileStore(path)
	require.NoError(t, err)
	st, ok, err := reloaded.Get("c", "section-lights")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uistate.Expanded, st)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := uistate.NewFileStore(path)
	assert.Error(t, err)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.db")

	s, err := uistate.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("c", "section-battery", uistate.Expanded))
	require.NoError(t, s.Close())

	s, err = uistate.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	all, err := s.All("c")
	require.NoError(t, err)
	assert.Equal(t, map[string]uistate.SectionState{"section-battery": uistate.Expanded}, all)
}

func TestParseSectionState(t *testing.T) {
	st, err := uistate.ParseSectionState("expanded")
	require.NoError(t, err)
	assert.Equal(t, uistate.Expanded, st)

	_, err = uistate.ParseSectionState("Expanded")
	assert.ErrorIs(t, err, uistate.ErrInvalidState)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"", "memory", "file", "sqlite"} {
		s, err := uistate.Open(backend, filepath.Join(dir, "state-"+backend))
		require.NoError(t, err, backend)
		require.NoError(t, s.Close())
	}
	_, err := uistate.Open("redis", "")
	assert.Error(t, err)
}
