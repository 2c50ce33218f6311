package fatfs

import (
	"io/fs"
	"strings"
)

// ioFsDirEntry adapts os.FileInfo to fs.DirEntry, as the teacher's
// GoDirEntry does for its own afero wrapper.
type ioFsDirEntry struct {
	fs.FileInfo
}

func (d ioFsDirEntry) Type() fs.FileMode { return d.FileInfo.Mode().Type() }

func (d ioFsDirEntry) Info() (fs.FileInfo, error) { return d.FileInfo, nil }

// ioFsFile adapts *aferoFile to fs.File and fs.ReadDirFile.
type ioFsFile struct {
	*aferoFile
}

func (f ioFsFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := f.aferoFile.Readdir(n)

	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = ioFsDirEntry{e}
	}
	return out, err
}

// IOFS wraps an AferoFS as an fs.FS, for callers that want to use
// fs.WalkDir, fs.Glob, or embed.FS-shaped APIs against a FAT volume.
type IOFS struct {
	*AferoFS
}

// NewIOFS loads img and exposes it as an fs.FS.
func NewIOFS(img Image) (*IOFS, error) {
	a, err := NewAferoFS(img)
	if err != nil {
		return nil, err
	}
	return &IOFS{a}, nil
}

// Open implements the fs.FS contract strictly: name must satisfy
// fs.ValidPath (no leading/trailing slash, no "." or ".." elements, no
// empty elements). This deliberately does NOT route through AferoFS's
// own lenient Open, which also accepts a leading slash and treats '\'
// as a separator for CLI/shell convenience (spec.md Open Question #1);
// an fs.FS consumer (fs.WalkDir, fstest.TestFS, ...) relies on strict
// path validation to reject malformed names rather than silently
// normalizing them.
func (i *IOFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		return ioFsFile{&aferoFile{vfs: i.AferoFS, isRoot: true, entry: Entry{Name: "/", Flags: EntryFlags{Directory: true}}}}, nil
	}

	entry, err := i.fs.resolve(strings.Split(name, "/"), i.fs.Root())
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return ioFsFile{&aferoFile{vfs: i.AferoFS, entry: entry}}, nil
}
