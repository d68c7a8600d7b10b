package journal

import (
	"github.com/pkg/errors"
)

// On-disk form of a change list: a count varint, then one record per
// change. A record is a tag varint (0 write, 1 sync); a write carries
// offset and length varints followed by the raw payload. Varints are
// little-endian base-128, seven payload bits per byte, high bit set on
// continuation bytes.

const (
	tagWrite = 0
	tagSync  = 1
)

// ErrInvalidChanges is returned when a changes file does not decode.
var ErrInvalidChanges = errors.New("invalid changes data")

func appendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func readUvarint(buf []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range buf {
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, 0, errors.Wrap(ErrInvalidChanges, "varint overflow")
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errors.Wrap(ErrInvalidChanges, "truncated varint")
}

func encodeChanges(changes []Change) []byte {
	buf := appendUvarint(nil, uint64(len(changes)))
	for _, c := range changes {
		if c.Sync {
			buf = appendUvarint(buf, tagSync)
			continue
		}
		buf = appendUvarint(buf, tagWrite)
		buf = appendUvarint(buf, c.Offset)
		buf = appendUvarint(buf, uint64(len(c.Data)))
		buf = append(buf, c.Data...)
	}
	return buf
}

func decodeChanges(buf []byte) ([]Change, error) {
	count, n, err := readUvarint(buf)
	if err != nil {
		return nil, err
	}
	buf = buf[n:]
	changes := make([]Change, 0, count)
	for i := uint64(0); i < count; i++ {
		tag, n, err := readUvarint(buf)
		if err != nil {
			return nil, err
		}
		buf = buf[n:]
		switch tag {
		case tagSync:
			changes = append(changes, Change{Sync: true})
		case tagWrite:
			offset, n, err := readUvarint(buf)
			if err != nil {
				return nil, err
			}
			buf = buf[n:]
			size, n, err := readUvarint(buf)
			if err != nil {
				return nil, err
			}
			buf = buf[n:]
			if uint64(len(buf)) < size {
				return nil, errors.Wrap(ErrInvalidChanges, "truncated write payload")
			}
			data := make([]byte, size)
			copy(data, buf[:size])
			buf = buf[size:]
			changes = append(changes, Change{Offset: offset, Data: data})
		default:
			return nil, errors.Wrapf(ErrInvalidChanges, "unknown change tag %d", tag)
		}
	}
	if len(buf) != 0 {
		return nil, errors.Wrap(ErrInvalidChanges, "trailing bytes after change list")
	}
	return changes, nil
}
