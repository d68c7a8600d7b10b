package journal

// splitSize is the chunk length SplitWrite cuts large writes into.
const splitSize = 2048

// MutateOptions selects the rewrites Mutate applies to a change list.
type MutateOptions struct {
	// DropSync discards sync barriers.
	DropSync bool
	// SplitWrite replaces writes longer than 2048 bytes with a run of
	// 2048-byte writes covering the same span.
	SplitWrite bool
	// ZeroFill inserts an all-zeros write in front of every write that
	// carries a nonzero byte, seeding "written, but zeros survived"
	// crash states.
	ZeroFill bool
}

// Mutate rebuilds the change list according to opts. The zero write is
// emitted before the real write so that replay taking both lets the
// real bytes win, and it is never split itself. When a write is split,
// the original write is replaced by its chunks.
func (j *Journal) Mutate(opts MutateOptions) {
	newChanges := make([]Change, 0, len(j.Changes))
	for _, change := range j.Changes {
		if change.Sync {
			if !opts.DropSync {
				newChanges = append(newChanges, change)
			}
			continue
		}
		if opts.ZeroFill && !allZeros(change.Data) {
			newChanges = append(newChanges, Change{
				Offset: change.Offset,
				Data:   make([]byte, len(change.Data)),
			})
		}
		if opts.SplitWrite && len(change.Data) > splitSize {
			for pos := 0; pos < len(change.Data); pos += splitSize {
				end := pos + splitSize
				if end > len(change.Data) {
					end = len(change.Data)
				}
				chunk := make([]byte, end-pos)
				copy(chunk, change.Data[pos:end])
				newChanges = append(newChanges, Change{
					Offset: change.Offset + uint64(pos),
					Data:   chunk,
				})
			}
		} else {
			newChanges = append(newChanges, change)
		}
	}
	j.Changes = newChanges
}

func allZeros(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
