package watermark

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMissingFileIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "marks.json"))

	marks, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, marks)

	fallback := time.Date(2025, 2, 5, 14, 44, 0, 0, time.UTC)
	require.Equal(t, fallback, marks.Get("metrics", fallback))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.json")
	store := NewStore(path)

	marks := Marks{}
	marks.Set("metrics", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC))
	marks.Set("workouts", time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(marks))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, marks, loaded)
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marks.json")
	store := NewStore(path)

	first := Marks{"metrics": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(first))
	second := Marks{"metrics": time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, second, loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestCorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
}
