// This is based on testing/fstest, go1.25.2:
// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Altered to take a map of prefixes to fs.FS instances, and trimmed to
// directory synthesis only: the mounted filesystems carry the files.

package mountfs

import (
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// A MountFS composes existing [fs.FS] instances under specific prefixes.
//
// Parent directories of the mount points need not exist anywhere; they are
// synthesized on open. File system operations must not run concurrently with
// changes to the map, which would be a race.
type MountFS map[string]fs.FS

func New(m map[string]fs.FS) MountFS {
	return m
}

var _ fs.FS = MountFS(nil)

// Open opens the named file.
func (fsys MountFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	name = filepath.ToSlash(name)
	fs_ := fsys[name]
	if fs_ != nil {
		return &mntDir{path: name, dirInfo: dirInfo{name: path.Base(name)}, fsys: fs_}, nil
	}
	for fname := range fsys {
		if strings.HasPrefix(name, fname+"/") {
			name = name[len(fname)+1:]
			return fsys[fname].Open(name)
		}
	}

	// Directory, possibly synthesized.
	var synthesize = make(map[string]bool)
	if name == "." {
		for fname := range fsys {
			i := strings.Index(fname, "/")
			if i < 0 {
				if fname != "." {
					synthesize[fname] = true
				}
			} else {
				synthesize[fname[:i]] = true
			}
		}
	} else {
		prefix := name + "/"
		for fname := range fsys {
			if strings.HasPrefix(fname, prefix) {
				felem := fname[len(prefix):]
				i := strings.Index(felem, "/")
				if i < 0 {
					synthesize[felem] = true
				} else {
					synthesize[fname[len(prefix):len(prefix)+i]] = true
				}
			}
		}
		// If the directory name is not in the map,
		// and there are no children of the name in the map,
		// then the directory is treated as not existing.
		if len(synthesize) == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
	}
	list := make([]dirInfo, 0, len(synthesize))
	for name := range synthesize {
		list = append(list, dirInfo{name: name})
	}
	slices.SortFunc(list, func(a, b dirInfo) int {
		return strings.Compare(a.name, b.name)
	})

	var elem string
	if name == "." {
		elem = "."
	} else {
		elem = name[strings.LastIndex(name, "/")+1:]
	}
	return &mapDir{path: name, dirInfo: dirInfo{name: elem}, entry: list, offset: 0}, nil
}

// A dirInfo implements fs.FileInfo and fs.DirEntry for a synthesized
// directory entry.
type dirInfo struct {
	name string
}

func (i *dirInfo) Name() string               { return path.Base(i.name) }
func (i *dirInfo) Size() int64                { return 0 }
func (i *dirInfo) Mode() fs.FileMode          { return fs.ModeDir | 0555 }
func (i *dirInfo) Type() fs.FileMode          { return fs.ModeDir }
func (i *dirInfo) ModTime() time.Time         { return time.Time{} }
func (i *dirInfo) IsDir() bool                { return true }
func (i *dirInfo) Sys() any                   { return nil }
func (i *dirInfo) Info() (fs.FileInfo, error) { return i, nil }

func (i *dirInfo) String() string {
	return fs.FormatFileInfo(i)
}

// A mapDir is a synthesized directory fs.File (so also a fs.ReadDirFile)
// open for reading.
type mapDir struct {
	path string
	dirInfo
	entry  []dirInfo
	offset int
}

func (d *mapDir) Stat() (fs.FileInfo, error) { return &d.dirInfo, nil }
func (*mapDir) Close() error                 { return nil }
func (d *mapDir) Read(b []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

func (d *mapDir) ReadDir(count int) ([]fs.DirEntry, error) {
	n := len(d.entry) - d.offset
	if n == 0 && count > 0 {
		return nil, io.EOF
	}
	if count > 0 && n > count {
		n = count
	}
	list := make([]fs.DirEntry, n)
	for i := range list {
		list[i] = &d.entry[d.offset+i]
	}
	d.offset += n
	return list, nil
}

// mntDir is a mount point: a directory whose entries come from the mounted
// filesystem's root.
type mntDir struct {
	path string
	dirInfo
	fsys fs.FS
}

func (*mntDir) Close() error                 { return nil }
func (d *mntDir) Stat() (fs.FileInfo, error) { return &d.dirInfo, nil }
func (d *mntDir) Read(b []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

func (d *mntDir) ReadDir(int) ([]fs.DirEntry, error) {
	return fs.ReadDir(d.fsys, ".") // NB: We're ignoring the count, for our usage, that's OK.
}
