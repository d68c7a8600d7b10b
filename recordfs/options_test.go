// +build linux darwin freebsd

package recordfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedArgs(t *testing.T) {
	// Root mounts need no help.
	assert.Equal(t, []string{"ro"}, fixedArgs([]string{"ro"}, 0))
	assert.Nil(t, fixedArgs(nil, 0))

	// Unprivileged mounts get allow_root prepended...
	assert.Equal(t, []string{"allow_root"}, fixedArgs(nil, 1000))
	assert.Equal(t, []string{"allow_root", "ro"}, fixedArgs([]string{"ro"}, 1000))

	// ...unless the caller asked for allow_other.
	assert.Equal(t, []string{"ro", "allow_other"},
		fixedArgs([]string{"ro", "allow_other"}, 1000))
}

func TestMountOptions(t *testing.T) {
	options, err := mountOptions([]string{
		"-o", "allow_root", "ro", "default_permissions",
		"fsname=test", "subtype=test", "max_readahead=4096",
		"async_read", "writeback_cache", "allow_other",
	})
	require.NoError(t, err)
	// FSName and Subtype defaults plus one option per recognised arg;
	// the lone "-o" is skipped.
	assert.Len(t, options, 11)
}

func TestMountOptionsErrors(t *testing.T) {
	_, err := mountOptions([]string{"nonsense"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonsense")

	_, err = mountOptions([]string{"max_readahead=banana"})
	require.Error(t, err)
}
