// Package journal implements the data model behind outagefs: an
// initial byte image plus an ordered list of changes made to it. The
// journal is the ground truth a mount session records into and the
// material the test generator and bisect driver replay from.
package journal

import (
	"bytes"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// Change is one recorded operation: either a write of Data at Offset,
// or a sync barrier (Sync true, Offset and Data unused).
//
// A write always lies entirely within the initial image - the exposed
// file never grows.
type Change struct {
	Sync   bool
	Offset uint64
	Data   []byte
}

// Equal reports whether two changes are bytewise identical.
func (c Change) Equal(other Change) bool {
	if c.Sync != other.Sync {
		return false
	}
	if c.Sync {
		return true
	}
	return c.Offset == other.Offset && bytes.Equal(c.Data, other.Data)
}

// Journal is an initial image and the ordered changes applied to it.
//
// Changes is append-only while a mount session is live. Mutate
// replaces it wholesale between sessions; the merge command builds a
// new Journal instead.
type Journal struct {
	InitialData []byte
	Changes     []Change
}

// New creates a Journal with the given initial image and no changes.
func New(data []byte) *Journal {
	return &Journal{InitialData: data}
}

// Load reads a journal from a base image file and a changes file. The
// base must exist. A missing changes file means an empty change list; a
// changes file that does not decode is ErrInvalidChanges.
func Load(basePath, changesPath string) (*Journal, error) {
	data, err := ioutil.ReadFile(basePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading base image %q", basePath)
	}
	j := New(data)
	buf, err := ioutil.ReadFile(changesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, errors.Wrapf(err, "reading changes %q", changesPath)
	}
	j.Changes, err = decodeChanges(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding changes %q", changesPath)
	}
	return j, nil
}

// Dump persists the journal. The base image is rewritten only when the
// file's current contents differ from InitialData. The changes file is
// written when the list is nonempty or the file already exists, so
// clearing a journal truncates its persisted form.
func (j *Journal) Dump(basePath, changesPath string) error {
	current, err := ioutil.ReadFile(basePath)
	if err != nil || !bytes.Equal(current, j.InitialData) {
		if err := ioutil.WriteFile(basePath, j.InitialData, 0666); err != nil {
			return errors.Wrapf(err, "writing base image %q", basePath)
		}
	}
	_, statErr := os.Stat(changesPath)
	if len(j.Changes) > 0 || statErr == nil {
		if err := ioutil.WriteFile(changesPath, encodeChanges(j.Changes), 0666); err != nil {
			return errors.Wrapf(err, "writing changes %q", changesPath)
		}
	}
	return nil
}

// Data replays the journal and returns the resulting image. A nil
// filter takes every change. Syncs have no byte effect; later writes
// win over earlier ones byte for byte. The result always has the
// length of the initial image.
func (j *Journal) Data(filter *ChangeFilter) []byte {
	data := make([]byte, len(j.InitialData))
	copy(data, j.InitialData)
	for i, change := range j.Changes {
		if !filter.Take(i) {
			continue
		}
		if change.Sync {
			continue
		}
		copy(data[change.Offset:], change.Data)
	}
	return data
}

// Append adds a change to the list.
func (j *Journal) Append(c Change) {
	j.Changes = append(j.Changes, c)
}

// AppendSync records a sync barrier unless the previous change already
// is one. Runs of syncs carry no extra information, so the recorder
// collapses them.
func (j *Journal) AppendSync() {
	if n := len(j.Changes); n > 0 && j.Changes[n-1].Sync {
		return
	}
	j.Append(Change{Sync: true})
}
