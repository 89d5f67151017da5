package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func padded(b []byte) []byte {
	out := make([]byte, PageSize)
	copy(out, b)
	return out
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "heap.db")

	m, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m, path
}

func TestAllocatePage_MonotonicFromZero(t *testing.T) {
	m, _ := newTestManager(t)

	require.Equal(t, PageID(0), m.AllocatePage())
	require.Equal(t, PageID(1), m.AllocatePage())
	require.Equal(t, PageID(2), m.AllocatePage())
	require.Equal(t, PageID(3), m.NextPageID())
}

func TestNewManager_RejectsMisalignedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.db")

	require.NoError(t, os.WriteFile(path, make([]byte, PageSize+1), 0o644))

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = NewManager(f)
	require.ErrorIs(t, err, ErrMisalignedFile)
}

func TestReadPageData_ShortReadIsError(t *testing.T) {
	m, _ := newTestManager(t)

	id := m.AllocatePage()
	buf := make([]byte, PageSize)
	err := m.ReadPageData(id, buf)
	require.Error(t, err)
}

// Scenario B from the spec: allocate p1/p2, write through, close, reopen
// by path, and confirm both pages round-trip bit for bit.
func TestDiskRoundTrip_ScenarioB(t *testing.T) {
	m, path := newTestManager(t)

	hello := padded([]byte("hello"))
	world := padded([]byte("world"))

	p1 := m.AllocatePage()
	require.NoError(t, m.WritePageData(p1, hello))

	p2 := m.AllocatePage()
	require.NoError(t, m.WritePageData(p2, world))

	require.NoError(t, m.Close())

	m2, err := Open(path)
	require.NoError(t, err)
	defer m2.Close()

	buf := make([]byte, PageSize)
	require.NoError(t, m2.ReadPageData(p1, buf))
	require.Equal(t, hello, buf)

	require.NoError(t, m2.ReadPageData(p2, buf))
	require.Equal(t, world, buf)
}

func TestAllocatePage_ReissuedAfterReopenIfNeverWritten(t *testing.T) {
	m, path := newTestManager(t)

	id := m.AllocatePage()
	require.NoError(t, m.Close())

	// id was allocated but never written; since next_page_id is
	// reconstructed from file length, reopening re-issues the same id.
	// This documents the spec's "Open question — id re-issuance": the
	// buffer pool mitigates it by forcing Dirty=true on CreatePage.
	m2, err := Open(path)
	require.NoError(t, err)
	defer m2.Close()

	require.Equal(t, id, m2.AllocatePage())
}
