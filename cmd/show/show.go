// Package show implements the show command: print the change list.
package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/journal"
	"github.com/outagefs/outagefs/lib/log"
)

var (
	paths   cmd.PathFlags
	verbose bool
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	paths.Install(flags)
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show detailed bytes")
}

var commandDefinition = &cobra.Command{
	Use:   "show",
	Short: "Show details of a changes file",
	RunE: func(command *cobra.Command, args []string) error {
		j, err := paths.Load()
		if err != nil {
			return err
		}
		showChanges(j.Changes, verbose)
		return nil
	},
}

func showChanges(changes []journal.Change, verbose bool) {
	if len(changes) == 0 {
		log.Infof("no changes")
	}
	for i, change := range changes {
		fmt.Printf("%6d ", i)
		switch {
		case change.Sync:
			fmt.Println("Sync")
		case verbose:
			fmt.Printf("Write at %d with %v\n", change.Offset, change.Data)
		default:
			suffix := ""
			if isAllZeros(change.Data) {
				suffix = " of zeros"
			}
			fmt.Printf("Write at %d with %d bytes%s\n", change.Offset, len(change.Data), suffix)
		}
	}
}

func isAllZeros(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
