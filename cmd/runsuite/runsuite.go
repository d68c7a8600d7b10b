// +build linux darwin freebsd

// Package runsuite implements the run-suite command: drive a verify
// script over every generated crash point.
package runsuite

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/suite"
)

var opts = suite.Options{}

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	flags.BoolVarP(&opts.Keep, "keep", "k", false, "Keep the temporary working directory")
	flags.BoolVar(&opts.Sudo, "sudo", false, "Run the script through 'sudo'")
	flags.IntVarP(&opts.MaxCasesLog2, "max-cases-log2", "m", 8, "Log2 of the maximum test cases generated between two Syncs")
	flags.StringArrayVar(&opts.FuseArgs, "fuse-args", nil, "FUSE mount options")
}

var commandDefinition = &cobra.Command{
	Use:   "run-suite SCRIPT",
	Short: "Run a crash-consistency test suite",
	Long: `Run SCRIPT through the three phases of a crash hunt in a temporary
directory:

    SCRIPT prepare BASE    create the base image
    SCRIPT changes MOUNT   write to the mounted file (recorded)
    SCRIPT verify MOUNT    check one replayed crash point

verify exits 0 for "same as baseline", 10 to 19 to label an acceptable
variant, and anything else to fail the suite. The process exits with
the failing verify script's code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		code, err := suite.Run(args[0], opts)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}
