package journal

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalChanges(t *testing.T) {
	j := New([]byte{9, 5, 7})
	assert.Equal(t, []byte{9, 5, 7}, j.Data(nil))

	j.Append(Change{Offset: 1, Data: []byte{4, 6}})
	assert.Equal(t, []byte{9, 4, 6}, j.Data(nil))

	j.Append(Change{Offset: 0, Data: []byte{8, 3}})
	assert.Equal(t, []byte{8, 3, 6}, j.Data(nil))
}

func TestJournalChangeFilter(t *testing.T) {
	j := New([]byte{9, 5, 7})
	j.Append(Change{Offset: 1, Data: []byte{4, 6}})
	j.Append(Change{Offset: 0, Data: []byte{8, 3}})

	for _, test := range []struct {
		filter string
		want   []byte
	}{
		{"11", []byte{8, 3, 6}},
		{"1:1", []byte{8, 3, 6}},
		{"10", []byte{9, 4, 6}},
		{"1:0", []byte{9, 4, 6}},
		{"01", []byte{8, 3, 7}},
		{"00", []byte{9, 5, 7}},
		{"2:0", []byte{8, 3, 6}},
		{"2:", []byte{8, 3, 6}},
		{"1", []byte{9, 4, 6}},
	} {
		f, err := ParseFilter(test.filter)
		require.NoError(t, err, test.filter)
		assert.Equal(t, test.want, j.Data(f), "filter %q", test.filter)
	}
}

func TestDataLengthInvariant(t *testing.T) {
	j := New(make([]byte, 100))
	j.Append(Change{Offset: 90, Data: []byte{1, 2, 3}})
	j.Append(Change{Sync: true})
	for _, filter := range []string{"", "0", "1", "11", "500:"} {
		f, err := ParseFilter(filter)
		require.NoError(t, err)
		assert.Len(t, j.Data(f), 100, "filter %q", filter)
	}
}

func TestEmptyFilterMeansNoFilter(t *testing.T) {
	j := New([]byte{9, 5, 7})
	j.Append(Change{Offset: 0, Data: []byte{1, 1, 1}})
	f, err := ParseFilter("")
	require.NoError(t, err)
	require.Nil(t, f)
	assert.Equal(t, j.Data(nil), j.Data(f))
}

func TestAppendSyncCollapses(t *testing.T) {
	j := New([]byte{0})
	j.AppendSync()
	j.AppendSync()
	j.AppendSync()
	require.Len(t, j.Changes, 1)

	j.Append(Change{Offset: 0, Data: []byte{1}})
	j.AppendSync()
	j.AppendSync()
	require.Len(t, j.Changes, 3)
	for i := 1; i < len(j.Changes); i++ {
		assert.False(t, j.Changes[i-1].Sync && j.Changes[i].Sync,
			"consecutive syncs at %d", i)
	}
}

func TestDumpLoad(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base")
	changesPath := filepath.Join(dir, "changes")

	j := New([]byte{9, 5, 7})
	j.Append(Change{Offset: 1, Data: []byte{4, 6}})
	j.Append(Change{Offset: 0, Data: []byte{8, 3}})
	require.NoError(t, j.Dump(basePath, changesPath))

	j2, err := Load(basePath, changesPath)
	require.NoError(t, err)
	assert.Equal(t, j.InitialData, j2.InitialData)
	require.Len(t, j2.Changes, 2)
	assert.True(t, j.Changes[0].Equal(j2.Changes[0]))
	assert.True(t, j.Changes[1].Equal(j2.Changes[1]))
	assert.Equal(t, j.Data(nil), j2.Data(nil))
}

func TestLoadMissingChanges(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base")
	require.NoError(t, ioutil.WriteFile(basePath, []byte{1, 2}, 0666))

	j, err := Load(basePath, filepath.Join(dir, "changes"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, j.InitialData)
	assert.Empty(t, j.Changes)
}

func TestLoadMissingBase(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "base"), filepath.Join(dir, "changes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base")
}

func TestLoadCorruptChanges(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base")
	changesPath := filepath.Join(dir, "changes")
	require.NoError(t, ioutil.WriteFile(basePath, []byte{1}, 0666))
	require.NoError(t, ioutil.WriteFile(changesPath, []byte{0xff, 0xff}, 0666))

	_, err := Load(basePath, changesPath)
	require.Error(t, err)
	assert.True(t, errorIs(err, ErrInvalidChanges), "got %v", err)
}

// errorIs walks the pkg/errors cause chain.
func errorIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

func TestDumpSkipsUnchangedBase(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base")
	changesPath := filepath.Join(dir, "changes")

	j := New([]byte{9, 5, 7})
	require.NoError(t, j.Dump(basePath, changesPath))
	before, err := os.Stat(basePath)
	require.NoError(t, err)

	// An unchanged image must not be rewritten.
	require.NoError(t, os.Chmod(basePath, 0444))
	require.NoError(t, j.Dump(basePath, changesPath))
	after, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	require.NoError(t, os.Chmod(basePath, 0666))
}

func TestDumpEmptyChanges(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base")
	changesPath := filepath.Join(dir, "changes")

	// No changes and no existing file: the changes file is not created.
	j := New([]byte{1})
	require.NoError(t, j.Dump(basePath, changesPath))
	_, err := os.Stat(changesPath)
	assert.True(t, os.IsNotExist(err))

	// Once the file exists, clearing the journal truncates it.
	j.Append(Change{Offset: 0, Data: []byte{2}})
	require.NoError(t, j.Dump(basePath, changesPath))
	j.Changes = nil
	require.NoError(t, j.Dump(basePath, changesPath))
	j2, err := Load(basePath, changesPath)
	require.NoError(t, err)
	assert.Empty(t, j2.Changes)
	assert.Equal(t, []byte{1}, j2.Data(nil))
}
