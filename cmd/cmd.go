// Package cmd implements the outagefs command line. Each subcommand
// lives in its own package and registers itself with Root from an
// init function; cmd/all pulls them all in.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/outagefs/outagefs/journal"
	"github.com/outagefs/outagefs/lib/log"
)

// Root is the main outagefs command.
var Root = &cobra.Command{
	Use:   "outagefs",
	Short: "simulate power outages against a file",
	Long: `outagefs mounts a journal (a base image plus a list of recorded
writes and fsyncs) as a single file, records everything written to it,
and replays arbitrary subsets of that history to reproduce the exact
on-disk state a crash would have left behind.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Main parses and runs a command, exiting nonzero on error.
func Main() {
	log.InitLogging()
	if err := Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// PathFlags is the --base/--changes pair shared by the journal
// commands.
type PathFlags struct {
	Base    string
	Changes string
}

// Install adds the path flags to flags.
func (p *PathFlags) Install(flags *pflag.FlagSet) {
	flags.StringVarP(&p.Base, "base", "b", "./base", "Path to the base image")
	flags.StringVarP(&p.Changes, "changes", "c", "./changes", "Path to the changes file")
}

// Load reads the journal the flags point at.
func (p *PathFlags) Load() (*journal.Journal, error) {
	log.Infof("reading journal at %s with changes %s", p.Base, p.Changes)
	return journal.Load(p.Base, p.Changes)
}

// Save writes the journal back to the flagged paths.
func (p *PathFlags) Save(j *journal.Journal) error {
	log.Infof("writing journal to %s with changes %s", p.Base, p.Changes)
	return j.Dump(p.Base, p.Changes)
}

// FilterFlag is the --filter flag shared by mount and merge.
type FilterFlag struct {
	Filter string
}

// Install adds the filter flag to flags.
func (f *FilterFlag) Install(flags *pflag.FlagSet) {
	flags.StringVarP(&f.Filter, "filter", "f", "", "Filter out certain changes, eg \"24:01011\"")
}

// Parse returns the parsed filter, nil when the flag is empty.
func (f *FilterFlag) Parse() (*journal.ChangeFilter, error) {
	return journal.ParseFilter(f.Filter)
}
