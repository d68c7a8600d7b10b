// +build linux darwin freebsd

// Package recordfs exposes a journal as a single fixed-size file
// through FUSE and records every write and fsync the guest issues back
// into the journal's change list.
package recordfs

import (
	"context"
	"sync"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/outagefs/outagefs/journal"
)

// blockSize is the block size reported through getattr and statfs.
const blockSize = 512

// attrValidTime is the kernel cache time for attributes and entries.
const attrValidTime = 60 * time.Second

// FS is the filesystem: a single regular file whose contents start as
// the journal's filtered replay. The file node is the root of the
// mount, so the mountpoint itself is the file.
type FS struct {
	file *File
}

// NewFS creates the filesystem over a private copy of the replayed
// image. The change list stays shared with the journal: everything the
// kernel delivers while mounted lands in j.Changes.
func NewFS(j *journal.Journal, filter *journal.ChangeFilter) *FS {
	return &FS{
		file: &File{
			data:    j.Data(filter),
			journal: j,
		},
	}
}

// Root returns the single file node.
func (f *FS) Root() (fusefs.Node, error) {
	return f.file, nil
}

// Statfs reports a filesystem exactly big enough for the file.
func (f *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	f.file.mu.Lock()
	defer f.file.mu.Unlock()
	resp.Blocks = f.file.blockCount()
	resp.Bsize = blockSize
	resp.Namelen = 255
	return nil
}

// File is the one node in the filesystem. The transport may serve
// requests on several goroutines; mu makes every operation an atomic
// mutation of the image and the journal.
type File struct {
	mu      sync.Mutex
	data    []byte
	journal *journal.Journal
}

func (f *File) blockCount() uint64 {
	return (uint64(len(f.data)) + blockSize - 1) / blockSize
}

func (f *File) fillAttr(a *fuse.Attr) {
	epoch := time.Unix(0, 0)
	a.Valid = attrValidTime
	a.Inode = 1
	a.Size = uint64(len(f.data))
	a.Blocks = f.blockCount()
	a.Atime = epoch
	a.Mtime = epoch
	a.Ctime = epoch
	a.Crtime = epoch
	a.Mode = 0666
	a.Nlink = 1
	a.Uid = 0
	a.Gid = 0
	a.BlockSize = blockSize
}

// Attr implements fusefs.Node.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fillAttr(a)
	return nil
}

// Lookup resolves any name to the file itself. The mount only ever
// contains this node, so there is nothing else to find.
func (f *File) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	return f, nil
}

// Read returns the requested slice of the in-memory image. Reads are
// not recorded.
func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	offset := int(req.Offset)
	end := offset + req.Size
	if end > len(f.data) {
		end = len(f.data)
	}
	// The response buffer outlives the lock; hand it a copy.
	resp.Data = append(resp.Data[:0], f.data[offset:end]...)
	return nil
}

// Write overwrites the image and appends the write to the journal.
// The guest never writes past the end of the file.
func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.data[req.Offset:], req.Data)
	data := make([]byte, len(req.Data))
	copy(data, req.Data)
	f.journal.Append(journal.Change{Offset: uint64(req.Offset), Data: data})
	resp.Size = len(req.Data)
	return nil
}

// Fsync records a sync barrier. Consecutive syncs collapse to one.
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.journal.AppendSync()
	return nil
}

var (
	_ fusefs.FS                 = (*FS)(nil)
	_ fusefs.FSStatfser         = (*FS)(nil)
	_ fusefs.Node               = (*File)(nil)
	_ fusefs.NodeFsyncer        = (*File)(nil)
	_ fusefs.HandleReader       = (*File)(nil)
	_ fusefs.HandleWriter       = (*File)(nil)
	_ fusefs.NodeStringLookuper = (*File)(nil)
)
