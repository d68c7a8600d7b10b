// Package mutate implements the mutate command: rewrite the change
// list to widen the space of crash states worth testing.
package mutate

import (
	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/journal"
)

var (
	paths cmd.PathFlags
	opts  journal.MutateOptions
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	paths.Install(flags)
	flags.BoolVar(&opts.DropSync, "drop-sync", false, "Discard Sync operations")
	flags.BoolVar(&opts.SplitWrite, "split-write", false, "Split large writes into 2048-byte ones")
	flags.BoolVar(&opts.ZeroFill, "zero-fill", false, "Insert Write operations with zeros")
}

var commandDefinition = &cobra.Command{
	Use:   "mutate",
	Short: "Mutate the recorded changes",
	RunE: func(command *cobra.Command, args []string) error {
		j, err := paths.Load()
		if err != nil {
			return err
		}
		j.Mutate(opts)
		return paths.Save(j)
	},
}
