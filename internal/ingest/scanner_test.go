package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanner_FindsNewSkipsProcessed(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(t.TempDir(), "ledger.json")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x,y\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.zip"), []byte("zzz"), 0o644))

	s, err := NewScanner(nil, dir, ledger)
	require.NoError(t, err)

	found, err := s.ScanNew()
	require.NoError(t, err)
	require.Len(t, found, 2)

	for _, f := range found {
		s.MarkProcessed(f.Hash)
	}

	found, err = s.ScanNew()
	require.NoError(t, err)
	require.Empty(t, found)

	// a renamed duplicate is still the same content
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_copy.csv"), []byte("x,y\n1,2\n"), 0o644))
	found, err = s.ScanNew()
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestScanner_LedgerPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(t.TempDir(), "ledger.json")
	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n1\n"), 0o644))

	s1, err := NewScanner(nil, dir, ledger)
	require.NoError(t, err)
	found, err := s1.ScanNew()
	require.NoError(t, err)
	require.Len(t, found, 1)
	s1.MarkProcessed(found[0].Hash)

	s2, err := NewScanner(nil, dir, ledger)
	require.NoError(t, err)
	require.True(t, s2.IsProcessed(found[0].Hash))

	found, err = s2.ScanNew()
	require.NoError(t, err)
	require.Empty(t, found)

	total, _, _ := s2.Stats()
	require.Equal(t, 1, total)
}
