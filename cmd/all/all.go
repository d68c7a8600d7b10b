// Package all imports every command package so that their init
// functions register themselves with the root command.
package all

import (
	// Active commands
	_ "github.com/outagefs/outagefs/cmd/gentests"
	_ "github.com/outagefs/outagefs/cmd/merge"
	_ "github.com/outagefs/outagefs/cmd/mount"
	_ "github.com/outagefs/outagefs/cmd/mutate"
	_ "github.com/outagefs/outagefs/cmd/runsuite"
	_ "github.com/outagefs/outagefs/cmd/show"
)
