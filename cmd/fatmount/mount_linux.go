//go:build linux

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/gofatfs/fatfs"
)

// volumeFS is the fuse.FS root for a decoded image, grounded on the
// teacher pack's bazil.org/fuse RecoverFS: a thin Dir/File pair over
// the volume's own directory tree rather than a flat offset map.
type volumeFS struct {
	volume *fatfs.FileSystem
}

func (v *volumeFS) Root() (fusefs.Node, error) {
	return &dirNode{volume: v.volume, reader: v.volume.Root()}, nil
}

type dirNode struct {
	volume *fatfs.FileSystem
	reader *fatfs.DirectoryReader
	entry  fatfs.Entry
}

func (d *dirNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o555
	return nil
}

func (d *dirNode) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	entries, err := d.reader.ReadAll()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if !strings.EqualFold(e.Name, name) {
			continue
		}
		if e.Flags.Directory {
			sub, err := d.volume.OpenDirectory(e)
			if err != nil {
				return nil, err
			}
			return &dirNode{volume: d.volume, reader: sub, entry: e}, nil
		}
		return &fileNode{volume: d.volume, entry: e}, nil
	}
	return nil, fuse.ENOENT
}

func (d *dirNode) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	entries, err := d.reader.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		typ := fuse.DT_File
		if e.Flags.Directory {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Name: e.Name, Type: typ})
	}
	return out, nil
}

type fileNode struct {
	volume *fatfs.FileSystem
	entry  fatfs.Entry
}

func (f *fileNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = 0o444
	a.Size = uint64(f.entry.Size)
	a.Mtime = f.entry.WriteTime
	return nil
}

func (f *fileNode) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if req.Offset >= int64(f.entry.Size) {
		resp.Data = []byte{}
		return nil
	}

	reader, err := f.volume.OpenFile(f.entry)
	if err != nil {
		return err
	}

	skip := req.Offset
	var leftover []byte
	for skip > 0 {
		chunk, err := reader.Next()
		if err != nil {
			return err
		}
		if chunk == nil {
			resp.Data = []byte{}
			return nil
		}
		if int64(len(chunk)) <= skip {
			skip -= int64(len(chunk))
			continue
		}
		leftover = chunk[skip:]
		skip = 0
	}

	want := req.Size
	buf := make([]byte, 0, want)
	for len(buf) < want {
		if len(leftover) == 0 {
			chunk, err := reader.Next()
			if err != nil {
				return err
			}
			if chunk == nil {
				break
			}
			leftover = chunk
		}
		n := want - len(buf)
		if n > len(leftover) {
			n = len(leftover)
		}
		buf = append(buf, leftover[:n]...)
		leftover = leftover[n:]
	}

	resp.Data = buf
	return nil
}

func mount(volume *fatfs.FileSystem, mountpoint string) error {
	c, err := fuse.Mount(mountpoint, fuse.ReadOnly())
	if err != nil {
		return err
	}
	defer c.Close()

	go func() {
		srv := fusefs.New(c, nil)
		if err := srv.Serve(&volumeFS{volume: volume}); err != nil {
			log.Fatalf("serve error: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	return fuse.Unmount(mountpoint)
}
