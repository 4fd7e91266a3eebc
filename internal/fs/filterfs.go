package fs

import (
	"io"
	"io/fs"
	"path"

	"github.com/gobwas/glob"
)

// filterFS wraps an fs.FS and hides files matching the exclusion patterns, or
// not matching the inclusion patterns (when any are given). Directories are
// never hidden; their contents are filtered on read.
type filterFS struct {
	fsys     fs.FS
	included []glob.Glob
	excluded []glob.Glob
}

// NewFilterFS returns a view of fsys restricted by the given include and
// exclude glob patterns. Patterns match against slash-separated paths
// relative to the root of fsys.
func NewFilterFS(fsys fs.FS, included, excluded []string) (fs.FS, error) {
	inc, err := compile(included)
	if err != nil {
		return nil, err
	}
	exc, err := compile(excluded)
	if err != nil {
		return nil, err
	}
	return &filterFS{fsys: fsys, included: inc, excluded: exc}, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (f *filterFS) keep(name string) bool {
	for _, g := range f.excluded {
		if g.Match(name) {
			return false
		}
	}
	if len(f.included) == 0 {
		return true
	}
	for _, g := range f.included {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (f *filterFS) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.IsDir() {
		return &filterDir{name: name, file: file, fsys: f}, nil
	}

	if !f.keep(name) {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return file, nil
}

func (f *filterFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}

	kept := make([]fs.DirEntry, 0, len(entries))
	for _, entry := range entries {
		p := entry.Name()
		if name != "." {
			p = path.Join(name, p)
		}
		if entry.IsDir() || f.keep(p) {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

// filterDir is a directory handle whose ReadDir applies the filters.
type filterDir struct {
	name   string
	file   fs.File
	fsys   *filterFS
	offset int
}

func (d *filterDir) Stat() (fs.FileInfo, error) { return d.file.Stat() }
func (d *filterDir) Close() error               { return d.file.Close() }
func (d *filterDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *filterDir) ReadDir(count int) ([]fs.DirEntry, error) {
	entries, err := d.fsys.ReadDir(d.name)
	if err != nil {
		return nil, err
	}

	entries = entries[d.offset:]
	if count > 0 {
		if len(entries) == 0 {
			return nil, io.EOF
		}
		if len(entries) > count {
			entries = entries[:count]
		}
	}
	d.offset += len(entries)
	return entries, nil
}
