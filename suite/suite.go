// +build linux darwin freebsd

// Package suite runs a whole crash-consistency hunt: prepare a base
// image, record a change session, then mount every generated crash
// point and verify it, bisecting towards variant boundaries.
package suite

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/outagefs/outagefs/bisect"
	"github.com/outagefs/outagefs/journal"
	"github.com/outagefs/outagefs/lib/exec"
	"github.com/outagefs/outagefs/lib/log"
	"github.com/outagefs/outagefs/recordfs"
	"github.com/outagefs/outagefs/testgen"
)

// Options configures a suite run.
type Options struct {
	// Keep leaves the working directory behind for inspection.
	Keep bool
	// Sudo runs every script phase under /bin/sudo.
	Sudo bool
	// MaxCasesLog2 bounds the per-window test count at 2^MaxCasesLog2.
	MaxCasesLog2 int
	// FuseArgs are passed through to every mount.
	FuseArgs []string
}

// Run executes the three script phases against a fresh workspace:
//
//	SCRIPT prepare BASE    - create the base image
//	SCRIPT changes MOUNT   - exercise the mounted file (recorded)
//	SCRIPT verify MOUNT    - check one crash point (repeated)
//
// It returns the suite's exit code: 0 when every crash point passes,
// otherwise the failing verify script's code. Mount and launch
// problems are errors, not exit codes.
func Run(script string, opts Options) (int, error) {
	script, err := filepath.Abs(script)
	if err != nil {
		return 0, errors.Wrapf(err, "resolving script %q", script)
	}
	dir, err := ioutil.TempDir("", "outagefs-suite-")
	if err != nil {
		return 0, errors.Wrap(err, "creating suite workspace")
	}
	if opts.Keep {
		log.Infof("keeping workspace: %s", dir)
	} else {
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				log.Errorf("removing workspace %s: %v", dir, err)
			}
		}()
	}

	basePath := filepath.Join(dir, "base")
	changesPath := filepath.Join(dir, "changes")
	mountPath := filepath.Join(dir, "mountpoint")

	// Phase 1: the script builds the base image.
	code, err := exec.Run(exec.ScriptCommand(script, "prepare", basePath, opts.Sudo))
	if err != nil {
		return 0, err
	}
	if code != 0 {
		return 0, errors.Errorf("prepare phase of %q exited with %d", script, code)
	}

	j, err := journal.Load(basePath, changesPath)
	if err != nil {
		return 0, err
	}

	// Phase 2: record the script's changes through a live mount.
	if err := touch(mountPath); err != nil {
		return 0, err
	}
	session, err := recordfs.Mount(j, mountPath, opts.FuseArgs, nil)
	if err != nil {
		return 0, err
	}
	code, err = exec.Run(exec.ScriptCommand(script, "changes", mountPath, opts.Sudo))
	session.Unmount()
	if err != nil {
		return 0, err
	}
	if code != 0 {
		return 0, errors.Errorf("changes phase of %q exited with %d", script, code)
	}
	if err := j.Dump(basePath, changesPath); err != nil {
		return 0, err
	}

	// Phase 3: bisect over generated crash points.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	filters := testgen.Generate(j.Changes, opts.MaxCasesLog2, rng)
	log.Infof("generated %d crash-point tests", len(filters))

	driver := bisect.New(len(filters), func(i int) (int, error) {
		return runVerify(j, filters[i], mountPath, script, opts)
	})
	tested, err := driver.Run()
	log.Infof("ran %d of %d tests", tested, len(filters))
	if err != nil {
		if failErr, ok := err.(*bisect.FailError); ok {
			log.Errorf("crash point %q failed verification with exit code %d",
				filters[failErr.Index], failErr.ExitCode)
			return failErr.ExitCode, nil
		}
		return 0, err
	}
	return 0, nil
}

// runVerify mounts one crash point and runs the verify phase against
// it. The journal is mounted with a filter and nothing is recorded
// back: the change list is restored before returning.
func runVerify(j *journal.Journal, filter, mountPath, script string, opts Options) (int, error) {
	f, err := journal.ParseFilter(filter)
	if err != nil {
		return 0, err
	}
	saved := len(j.Changes)
	session, err := recordfs.Mount(j, mountPath, opts.FuseArgs, f)
	if err != nil {
		return 0, err
	}
	code, err := exec.Run(exec.ScriptCommand(script, "verify", mountPath, opts.Sudo))
	session.Unmount()
	j.Changes = j.Changes[:saved]
	return code, err
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return errors.Wrapf(err, "creating mountpoint %q", path)
	}
	return f.Close()
}
