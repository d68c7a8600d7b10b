// +build linux darwin freebsd

package recordfs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outagefs/outagefs/journal"
)

func skipIfNoFUSE(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("FUSE not available")
	}
}

// mountpoint creates the regular file the mount covers.
func mountpoint(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a")
	require.NoError(t, ioutil.WriteFile(path, nil, 0666))
	return path
}

// overwrite writes data in place without going through the create
// path, the way a guest updating a device image would.
func overwrite(t *testing.T, path string, data []byte) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = file.WriteAt(data, 0)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}

func TestMountRecordsWrites(t *testing.T) {
	skipIfNoFUSE(t)
	path := mountpoint(t)
	j := journal.New([]byte{9, 5, 7})

	session, err := Mount(j, path, nil, nil)
	require.NoError(t, err)
	got, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 5, 7}, got)
	overwrite(t, path, []byte{3, 2, 1})
	session.Unmount()

	// Unmounted: the original empty file shows through again.
	got, err = ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []byte{3, 2, 1}, j.Data(nil))

	// A second session starts from the recorded state.
	session, err = Mount(j, path, nil, nil)
	require.NoError(t, err)
	got, err = ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, got)
	overwrite(t, path, []byte{0, 0, 0})
	session.Unmount()
	assert.Equal(t, []byte{0, 0, 0}, j.Data(nil))

	// Clearing the changes restores the initial image.
	j.Changes = nil
	assert.Equal(t, []byte{9, 5, 7}, j.Data(nil))
}

func TestMountFilter(t *testing.T) {
	skipIfNoFUSE(t)
	path := mountpoint(t)
	j := journal.New([]byte{9, 5, 7})
	j.Append(journal.Change{Offset: 1, Data: []byte{4, 6}})
	j.Append(journal.Change{Offset: 0, Data: []byte{8, 3}})

	filter, err := journal.ParseFilter("10")
	require.NoError(t, err)
	session, err := Mount(j, path, nil, filter)
	require.NoError(t, err)
	got, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 4, 6}, got)
	session.Unmount()
	// The filter only shaped the mounted image, not the journal.
	assert.Len(t, j.Changes, 2)
}

func TestMountFsyncCollapses(t *testing.T) {
	skipIfNoFUSE(t)
	path := mountpoint(t)
	j := journal.New(make([]byte, 4))

	session, err := Mount(j, path, nil, nil)
	require.NoError(t, err)
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = file.WriteAt([]byte{1, 2}, 0)
	require.NoError(t, err)
	require.NoError(t, file.Sync())
	require.NoError(t, file.Sync())
	_, err = file.WriteAt([]byte{3}, 2)
	require.NoError(t, err)
	require.NoError(t, file.Sync())
	require.NoError(t, file.Close())
	session.Unmount()

	var kinds []bool
	for _, c := range j.Changes {
		kinds = append(kinds, c.Sync)
	}
	assert.Equal(t, []bool{false, true, false, true}, kinds)
}

func TestMountAttr(t *testing.T) {
	skipIfNoFUSE(t)
	path := mountpoint(t)
	j := journal.New(make([]byte, 1000))

	session, err := Mount(j, path, nil, nil)
	require.NoError(t, err)
	defer session.Unmount()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Size())
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(0), info.ModTime().Unix())
}
