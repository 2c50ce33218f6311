package fatfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/gofatfs/fatfs/checkpoint"
)

// AferoFS adapts a FileSystem facade to afero.Fs, the way the teacher
// exposes its own gofat.Fs, so existing afero-based tooling (afero.Walk,
// afero.IOFS, …) works unchanged against a mounted image. Every
// mutating method reports ErrNotSupported: write support is an
// explicit non-goal of this module, not an unimplemented stub.
type AferoFS struct {
	fs *FileSystem
}

// NewAferoFS loads img and wraps it as an afero.Fs.
func NewAferoFS(img Image) (*AferoFS, error) {
	fs, err := Load(img)
	if err != nil {
		return nil, err
	}
	return &AferoFS{fs: fs}, nil
}

func (a *AferoFS) Name() string { return "fatfs" }

// Open resolves name (an absolute or relative slash/backslash path)
// against the volume root and returns a handle to it.
func (a *AferoFS) Open(name string) (afero.File, error) {
	trimmed := strings.Trim(filepath.ToSlash(name), "/")
	if trimmed == "" || trimmed == "." {
		return &aferoFile{
			vfs:    a,
			isRoot: true,
			entry:  Entry{Name: "/", Flags: EntryFlags{Directory: true}},
		}, nil
	}

	entry, err := a.fs.Find(trimmed, a.fs.Root())
	if err != nil {
		return nil, err
	}
	return &aferoFile{vfs: a, entry: entry}, nil
}

func (a *AferoFS) OpenFile(name string, _ int, _ os.FileMode) (afero.File, error) {
	return a.Open(name)
}

func (a *AferoFS) Stat(name string) (os.FileInfo, error) {
	f, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}

func (a *AferoFS) Create(string) (afero.File, error) { return nil, errWriteNotSupported() }
func (a *AferoFS) Mkdir(string, os.FileMode) error { return errWriteNotSupported() }
func (a *AferoFS) MkdirAll(string, os.FileMode) error { return errWriteNotSupported() }
func (a *AferoFS) Remove(string) error { return errWriteNotSupported() }
func (a *AferoFS) RemoveAll(string) error { return errWriteNotSupported() }
func (a *AferoFS) Rename(string, string) error { return errWriteNotSupported() }
func (a *AferoFS) Chmod(string, os.FileMode) error { return errWriteNotSupported() }
func (a *AferoFS) Chown(string, int, int) error { return errWriteNotSupported() }
func (a *AferoFS) Chtimes(string, time.Time, time.Time) error { return errWriteNotSupported() }

func errWriteNotSupported() error {
	return checkpoint.From(fmt.Errorf("%w: volume is read-only", ErrNotSupported))
}

// aferoFile implements afero.File over an Entry. File content is pulled
// from the core FileReader one cluster at a time rather than buffered
// whole; Readdir reads the whole directory on its first call and pages
// through that slice afterwards.
type aferoFile struct {
	vfs    *AferoFS
	entry  Entry
	isRoot bool

	pos      int64
	reader   *FileReader
	leftover []byte

	dirEntries []Entry
	dirLoaded  bool
}

func (f *aferoFile) isDir() bool { return f.isRoot || f.entry.Flags.Directory }

func (f *aferoFile) Name() string {
	if f.isRoot {
		return "/"
	}
	return f.entry.Name
}

func (f *aferoFile) Stat() (os.FileInfo, error) {
	if f.isRoot {
		return f.entry.FileInfo(), nil
	}
	return f.entry.FileInfo(), nil
}

func (f *aferoFile) resetReader() {
	f.reader = nil
	f.leftover = nil
}

func (f *aferoFile) Read(p []byte) (int, error) {
	if f.isDir() {
		return 0, checkpoint.From(ErrNotAFile)
	}

	if f.reader == nil {
		r, err := f.vfs.fs.OpenFile(f.entry)
		if err != nil {
			return 0, err
		}
		if err := skipReader(r, f.pos, &f.leftover); err != nil {
			return 0, err
		}
		f.reader = r
	}

	total := 0
	for total < len(p) {
		if len(f.leftover) == 0 {
			chunk, err := f.reader.Next()
			if err != nil {
				return total, err
			}
			if chunk == nil {
				if total == 0 {
					return 0, io.EOF
				}
				return total, nil
			}
			f.leftover = chunk
		}
		n := copy(p[total:], f.leftover)
		f.leftover = f.leftover[n:]
		total += n
		f.pos += int64(n)
	}
	return total, nil
}

// skipReader drains and discards skip bytes from r, leaving any
// partially-consumed chunk in *leftover.
func skipReader(r *FileReader, skip int64, leftover *[]byte) error {
	for skip > 0 {
		chunk, err := r.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			return nil
		}
		if int64(len(chunk)) <= skip {
			skip -= int64(len(chunk))
			continue
		}
		*leftover = chunk[skip:]
		return nil
	}
	return nil
}

func (f *aferoFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, checkpoint.From(fmt.Errorf("negative offset %d", off))
	}
	save, saveReader, saveLeftover := f.pos, f.reader, f.leftover
	f.pos, f.reader, f.leftover = off, nil, nil

	n, err := f.Read(p)

	f.pos, f.reader, f.leftover = save, saveReader, saveLeftover
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (f *aferoFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = int64(f.entry.Size) + offset
	default:
		return 0, checkpoint.From(fmt.Errorf("seek: invalid whence %d", whence))
	}
	if newPos < 0 {
		return 0, checkpoint.From(fmt.Errorf("seek: negative position %d", newPos))
	}
	f.pos = newPos
	f.resetReader()
	return f.pos, nil
}

func (f *aferoFile) Readdir(count int) ([]os.FileInfo, error) {
	if !f.isDir() {
		return nil, checkpoint.From(ErrNotADirectory)
	}

	if !f.dirLoaded {
		var dr *DirectoryReader
		if f.isRoot {
			dr = f.vfs.fs.Root()
		} else {
			var err error
			dr, err = f.vfs.fs.OpenDirectory(f.entry)
			if err != nil {
				return nil, err
			}
		}
		entries, err := dr.ReadAll()
		if err != nil {
			return nil, err
		}
		f.dirEntries = entries
		f.dirLoaded = true
	}

	if count <= 0 {
		out := make([]os.FileInfo, 0, len(f.dirEntries))
		for _, e := range f.dirEntries {
			out = append(out, e.FileInfo())
		}
		f.dirEntries = nil
		return out, nil
	}

	n := count
	if n > len(f.dirEntries) {
		n = len(f.dirEntries)
	}
	out := make([]os.FileInfo, 0, n)
	for _, e := range f.dirEntries[:n] {
		out = append(out, e.FileInfo())
	}
	f.dirEntries = f.dirEntries[n:]

	var err error
	if n < count {
		err = io.EOF
	}
	return out, err
}

func (f *aferoFile) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, err
}

func (f *aferoFile) Sync() error { return nil }

func (f *aferoFile) Close() error {
	f.resetReader()
	f.dirEntries = nil
	return nil
}

func (f *aferoFile) Write([]byte) (int, error) { return 0, errWriteNotSupported() }
func (f *aferoFile) WriteAt([]byte, int64) (int, error) { return 0, errWriteNotSupported() }
func (f *aferoFile) WriteString(string) (int, error) { return 0, errWriteNotSupported() }
func (f *aferoFile) Truncate(int64) error { return errWriteNotSupported() }
