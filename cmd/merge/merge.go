// Package merge implements the merge command: collapse the journal's
// history into a new base image.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/journal"
)

var (
	paths  cmd.PathFlags
	filter cmd.FilterFlag
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	paths.Install(flags)
	filter.Install(flags)
}

var commandDefinition = &cobra.Command{
	Use:   "merge",
	Short: "Merge changes into the base image",
	Long: `Replace the base image with the filtered replay of the journal and
clear the change list. The persisted changes file is truncated.`,
	RunE: func(command *cobra.Command, args []string) error {
		j, err := paths.Load()
		if err != nil {
			return err
		}
		f, err := filter.Parse()
		if err != nil {
			return err
		}
		merged := journal.New(j.Data(f))
		return paths.Save(merged)
	},
}
