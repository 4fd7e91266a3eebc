package builder

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/yalue/merged_fs"

	"github.com/bundlectl/bundlectl/internal/config"
	bfs "github.com/bundlectl/bundlectl/internal/fs"
	"github.com/bundlectl/bundlectl/internal/fs/mountfs"
)

// copyStatic materializes the copy directives under the output directory.
// The filtered source trees are merged into one union filesystem (earlier
// directives win on conflicts) and written out in a single walk. Include and
// exclude filters apply to paths relative to each source tree; a `to` prefix
// remounts a tree under a subdirectory of the output.
func (b *Builder) copyStatic(plugins []*config.CopyPlugin, result *Result) error {
	trees := make([]fs.FS, 0, len(plugins))
	for _, plugin := range plugins {
		filtered, err := bfs.NewFilterFS(os.DirFS(plugin.From), plugin.Include, plugin.Exclude)
		if err != nil {
			return err
		}

		if plugin.To != "" {
			filtered = mountfs.New(map[string]fs.FS{path.Clean(plugin.To): filtered})
		}
		trees = append(trees, filtered)
	}

	fsys := merged_fs.MergeMultiple(trees...)

	files, err := bfs.FSContainsFiles(fsys)
	if err != nil {
		return err
	}
	if !files {
		b.log.Debugf("copy plugins hold no files after filtering")
		return nil
	}

	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		bs, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		dst := filepath.Join(b.build.Output.Dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, bs, 0o644); err != nil {
			return err
		}

		result.Assets = append(result.Assets, Asset{
			Name:  p,
			Bytes: int64(len(bs)),
			Group: "static",
		})
		b.bar.Add(1)
		return nil
	})
}
