// Package exec runs user scripts for outagefs: the shell commands
// behind `mount --exec` and the prepare/changes/verify phases of
// `run-suite`.
package exec

import (
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/outagefs/outagefs/lib/log"
)

const (
	shPath   = "/bin/sh"
	sudoPath = "/bin/sudo"
)

// ShellCommand builds the argv for running cmd through the shell with
// arg as $1: /bin/sh -c CMD -- ARG, prefixed with /bin/sudo when sudo
// is set.
func ShellCommand(cmd, arg string, sudo bool) []string {
	argv := []string{shPath, "-c", cmd, "--", arg}
	if sudo {
		argv = append([]string{sudoPath}, argv...)
	}
	return argv
}

// ScriptCommand builds the argv for a run-suite phase: SCRIPT PHASE
// PATH, optionally under sudo.
func ScriptCommand(script, phase, path string, sudo bool) []string {
	argv := []string{script, phase, path}
	if sudo {
		argv = append([]string{sudoPath}, argv...)
	}
	return argv
}

// Run spawns argv with inherited stdio and waits for it. A process
// that started and exited returns its exit code with a nil error, even
// when nonzero; only failure to launch or death by signal is an error.
func Run(argv []string) (int, error) {
	log.Infof("running: %s", joinForLog(argv))
	cmd := osexec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		log.Infof("child exited with 0")
		return 0, nil
	}
	if exitErr, ok := err.(*osexec.ExitError); ok {
		code := exitErr.ExitCode()
		if code >= 0 {
			log.Infof("child exited with %d", code)
			return code, nil
		}
		return 0, errors.Wrapf(err, "%q killed by signal", argv[0])
	}
	return 0, errors.Wrapf(err, "spawning %q", argv[0])
}

// joinForLog renders an argv for the log line, quoting only arguments
// the shell would mangle.
func joinForLog(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'$&|;<>*?()") {
			quoted[i] = fmt.Sprintf("%q", arg)
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
