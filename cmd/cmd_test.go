package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFlagDefaults(t *testing.T) {
	var paths PathFlags
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	paths.Install(flags)
	require.NoError(t, flags.Parse(nil))
	assert.Equal(t, "./base", paths.Base)
	assert.Equal(t, "./changes", paths.Changes)
}

func TestFilterFlagDefault(t *testing.T) {
	var filter FilterFlag
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	filter.Install(flags)
	require.NoError(t, flags.Parse(nil))
	assert.Equal(t, "", filter.Filter)

	f, err := filter.Parse()
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFilterFlagParse(t *testing.T) {
	var filter FilterFlag
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	filter.Install(flags)
	require.NoError(t, flags.Parse([]string{"--filter", "24:01011"}))
	f, err := filter.Parse()
	require.NoError(t, err)
	assert.Equal(t, 29, f.Len())

	filter.Filter = "bogus"
	_, err = filter.Parse()
	require.Error(t, err)
}
