package fatfs

import (
	"os"
	"time"
)

// FileInfo adapts an Entry to os.FileInfo, the shape afero and io/fs
// both expect.
func (e Entry) FileInfo() os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry Entry
}

func (i entryFileInfo) Name() string { return i.entry.Name }
func (i entryFileInfo) Size() int64  { return int64(i.entry.Size) }

func (i entryFileInfo) Mode() os.FileMode {
	mode := os.FileMode(0o444) // read-only volume: no write bits, ever
	if i.entry.Flags.Directory {
		mode |= os.ModeDir
	}
	return mode
}

func (i entryFileInfo) ModTime() time.Time { return i.entry.WriteTime }
func (i entryFileInfo) IsDir() bool        { return i.entry.Flags.Directory }
func (i entryFileInfo) Sys() interface{}   { return i.entry }
