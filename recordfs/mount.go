// +build linux darwin freebsd

package recordfs

import (
	"os"
	"strconv"
	"strings"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/pkg/errors"

	"github.com/outagefs/outagefs/journal"
	"github.com/outagefs/outagefs/lib/log"
)

// ErrInvalidOption is returned for a FUSE option string the mount does
// not understand.
var ErrInvalidOption = errors.New("invalid fuse option")

// Session is a live mount. Unmount tears it down and, once the unmount
// succeeds, blocks until the serve loop has drained, after which the
// journal's change list holds every operation the kernel delivered.
type Session struct {
	dest    string
	conn    *fuse.Conn
	errChan chan error
}

// fixedArgs prepends allow_root for an unprivileged mounter unless the
// caller already asked for allow_other, so that a sudo-escalated
// verify script can see the mount.
func fixedArgs(args []string, uid int) []string {
	if uid == 0 {
		return args
	}
	for _, arg := range args {
		if arg == "allow_other" {
			return args
		}
	}
	return append([]string{"allow_root"}, args...)
}

// mountOptions translates string FUSE options into bazil mount
// options.
func mountOptions(args []string) ([]fuse.MountOption, error) {
	options := []fuse.MountOption{
		fuse.FSName("outagefs"),
		fuse.Subtype("outagefs"),
	}
	for _, arg := range args {
		if arg == "-o" {
			continue
		}
		name, value := arg, ""
		if i := strings.Index(arg, "="); i >= 0 {
			name, value = arg[:i], arg[i+1:]
		}
		switch name {
		case "allow_other":
			options = append(options, fuse.AllowOther())
		case "allow_root":
			options = append(options, fuse.AllowRoot())
		case "default_permissions":
			options = append(options, fuse.DefaultPermissions())
		case "ro":
			options = append(options, fuse.ReadOnly())
		case "async_read":
			options = append(options, fuse.AsyncRead())
		case "writeback_cache":
			options = append(options, fuse.WritebackCache())
		case "fsname":
			options = append(options, fuse.FSName(value))
		case "subtype":
			options = append(options, fuse.Subtype(value))
		case "max_readahead":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidOption, "max_readahead=%q", value)
			}
			options = append(options, fuse.MaxReadahead(uint32(n)))
		default:
			return nil, errors.Wrapf(ErrInvalidOption, "%q", arg)
		}
	}
	return options, nil
}

// Mount exposes the journal's filtered replay as a single file at
// dest. dest must be an existing regular file; the mount covers it for
// the lifetime of the session. Writes and fsyncs received while
// mounted append to the journal's change list, which must not be
// touched elsewhere until Unmount returns.
func Mount(j *journal.Journal, dest string, fuseArgs []string, filter *journal.ChangeFilter) (*Session, error) {
	fuseArgs = fixedArgs(fuseArgs, os.Getuid())
	options, err := mountOptions(fuseArgs)
	if err != nil {
		return nil, err
	}
	log.Debugf("fuse mount options for %q: %v", dest, fuseArgs)
	c, err := fuse.Mount(dest, options...)
	if err != nil {
		return nil, errors.Wrapf(err, "mounting recordfs at %q", dest)
	}
	filesys := NewFS(j, filter)
	server := fusefs.New(c, nil)
	errChan := make(chan error, 1)
	go func() {
		err := server.Serve(filesys)
		closeErr := c.Close()
		if err == nil {
			err = closeErr
		}
		errChan <- err
	}()
	log.Infof("mounted: %s", dest)
	return &Session{dest: dest, conn: c, errChan: errChan}, nil
}

// Unmount detaches the filesystem and waits for the serve loop to
// finish. Errors on this path are logged, not fatal. When the unmount
// itself fails, Unmount logs it and returns without waiting for the
// serve loop, which then keeps running.
func (s *Session) Unmount() {
	if err := fuse.Unmount(s.dest); err != nil {
		log.Errorf("unmount %s: %v", s.dest, err)
		return
	}
	if err := <-s.errChan; err != nil {
		log.Errorf("fuse serve %s: %v", s.dest, err)
	}
	log.Infof("unmounted: %s", s.dest)
}
