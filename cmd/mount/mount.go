// +build linux darwin freebsd

// Package mount implements the mount command: expose the journal as a
// single file and record what the guest writes to it.
package mount

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/outagefs/outagefs/cmd"
	"github.com/outagefs/outagefs/lib/exec"
	"github.com/outagefs/outagefs/lib/log"
	"github.com/outagefs/outagefs/recordfs"
)

var (
	paths    cmd.PathFlags
	filter   cmd.FilterFlag
	fuseArgs []string
	record   bool
	execCmd  string
	sudo     bool
	dest     string
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	flags := commandDefinition.Flags()
	paths.Install(flags)
	filter.Install(flags)
	flags.StringArrayVar(&fuseArgs, "fuse-args", nil, "FUSE mount options")
	flags.BoolVarP(&record, "record", "r", false, "Record changes back to disk after unmounting")
	flags.StringVarP(&execCmd, "exec", "e", "", "Shell command to run with the mount path as $1")
	flags.BoolVar(&sudo, "sudo", false, "Run the command through 'sudo'")
	flags.StringVarP(&dest, "dest", "d", "./mountpoint", "Mount destination")
}

var commandDefinition = &cobra.Command{
	Use:   "mount",
	Short: "Mount the journal and record changes",
	Long: `Mount the journal as a single file at the destination path.

Without --exec, the process waits for ENTER on stdin before
unmounting. With --exec, the shell command runs with the mount path as
its first argument and the filesystem unmounts when it exits. With
--record, the recorded changes are written back to the changes file
after unmounting.`,
	RunE: func(command *cobra.Command, args []string) error {
		j, err := paths.Load()
		if err != nil {
			return err
		}
		f, err := filter.Parse()
		if err != nil {
			return err
		}
		// The mountpoint is a regular file; make sure it exists.
		if file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE, 0666); err == nil {
			_ = file.Close()
		}
		session, err := recordfs.Mount(j, dest, fuseArgs, f)
		if err != nil {
			return err
		}
		if execCmd != "" {
			if _, err := exec.Run(exec.ShellCommand(execCmd, dest, sudo)); err != nil {
				session.Unmount()
				return err
			}
		} else {
			log.Infof("press ENTER to write changes and unmount")
			waitStdin()
		}
		session.Unmount()
		if record {
			if err := j.Dump(paths.Base, paths.Changes); err != nil {
				return errors.Wrap(err, "recording changes")
			}
			log.Infof("changes written: %s", paths.Changes)
		}
		return nil
	},
}

func waitStdin() {
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}
