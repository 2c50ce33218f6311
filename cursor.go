package fatfs

import (
	"encoding/binary"
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/gofatfs/fatfs/checkpoint"
)

// Image is the byte-addressable blob a volume is decoded from. It is
// satisfied by *os.File, the bytesextra read-write-seeker that
// NewImageFromBytes wraps around an in-memory []byte, or any other
// io.ReaderAt.
type Image interface {
	io.ReaderAt
}

// NewImageFromBytes wraps a raw buffer as an Image without copying it.
func NewImageFromBytes(b []byte) Image {
	return bytesextra.NewReadWriteSeeker(b)
}

// cursor is an addressable view over an Image at a fixed base offset.
// It is a cheap value: copying a cursor and adding to its offset never
// touches the underlying Image.
type cursor struct {
	img Image
	off int64
}

func newCursor(img Image) cursor {
	return cursor{img: img, off: 0}
}

// plus returns a new cursor advanced by n bytes. It does not itself
// validate the resulting offset; validation happens on read.
func (c cursor) plus(n int64) cursor {
	return cursor{img: c.img, off: c.off + n}
}

// read returns exactly length bytes starting at the cursor's offset.
// It reports ErrImage if the read could not be satisfied in full.
func (c cursor) read(length int) ([]byte, error) {
	if length < 0 || c.off < 0 {
		return nil, checkpoint.Wrap(errOutOfRange(c.off, length), ErrImage)
	}

	buf := make([]byte, length)
	n, err := c.img.ReadAt(buf, c.off)
	if err != nil && err != io.EOF {
		return nil, checkpoint.Wrap(err, ErrImage)
	}
	if n != length {
		return nil, checkpoint.Wrap(errTruncated(c.off, length, n), ErrImage)
	}
	return buf, nil
}

// readAt is a convenience combining plus and read.
func (c cursor) readAt(offset, length int) ([]byte, error) {
	return c.plus(int64(offset)).read(length)
}

func (c cursor) u8(offset int) (byte, error) {
	b, err := c.plus(int64(offset)).read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c cursor) u16(offset int) (uint16, error) {
	b, err := c.plus(int64(offset)).read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c cursor) u32(offset int) (uint32, error) {
	b, err := c.plus(int64(offset)).read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
