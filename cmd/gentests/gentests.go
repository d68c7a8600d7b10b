// Package gentests implements the gen-tests command: print crash-point
// filters for the recorded changes.
package gentests

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/testgen"
)

var (
	paths        cmd.PathFlags
	maxCasesLog2 int
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	paths.Install(flags)
	flags.IntVarP(&maxCasesLog2, "max-cases-log2", "m", 8, "Log2 of the maximum test cases generated between two Syncs")
}

var commandDefinition = &cobra.Command{
	Use:   "gen-tests",
	Short: "Generate filters for testing",
	Long: `Print one filter per line. Each filter describes a crash point: a
subset of the writes between two Syncs that reached the disk. Windows
with up to 2^--max-cases-log2 crash points are enumerated completely,
larger ones are sampled.`,
	RunE: func(command *cobra.Command, args []string) error {
		j, err := paths.Load()
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for _, filter := range testgen.Generate(j.Changes, maxCasesLog2, rng) {
			fmt.Println(filter)
		}
		return nil
	},
}
