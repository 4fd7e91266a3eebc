package mountfs_test

import (
	"io/fs"
	"testing"

	bfs "github.com/bundlectl/bundlectl/internal/fs"
	"github.com/bundlectl/bundlectl/internal/fs/mountfs"
)

func TestMountFS(t *testing.T) {
	files0 := bfs.MapFS(map[string]string{"favicon.ico": "icon"})
	files1 := bfs.MapFS(map[string]string{"robots.txt": "User-agent: *"})
	files2 := bfs.MapFS(map[string]string{
		"logo.svg": "<svg/>",
		"app.css":  "body {}",
	})
	fsys := mountfs.New(map[string]fs.FS{
		"static/img/icons":   files0,
		"static/img/icons/a": files1,
		"static/css":         files2,
	})
	t.Run("list root", func(t *testing.T) {
		xs, err := fs.ReadDir(fsys, ".")
		if err != nil {
			t.Fatal(err)
		}
		if exp, act := 1, len(xs); exp != act {
			t.Fatalf("expected %d entries, got %d", exp, act)
		}
		if exp, act := "static", xs[0].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
	})
	t.Run("list common prefix", func(t *testing.T) {
		xs, err := fs.ReadDir(fsys, "static")
		if err != nil {
			t.Fatal(err)
		}
		if exp, act := 2, len(xs); exp != act {
			t.Fatalf("expected %d entries, got %d", exp, act)
		}
		if exp, act := "css", xs[0].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
		if exp, act := "img", xs[1].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
	})
	t.Run("list mount point", func(t *testing.T) {
		xs, err := fs.ReadDir(fsys, "static/css")
		if err != nil {
			t.Fatal(err)
		}
		if exp, act := 2, len(xs); exp != act {
			t.Fatalf("expected %d entries, got %d", exp, act)
		}
		if exp, act := "app.css", xs[0].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
		if exp, act := "logo.svg", xs[1].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
	})
	// The last two cases just capture the peculiarities of overlapping
	// mounts; they have no relevance for the copy plugin's use of mountfs.
	t.Run("list mount point overlapping prefix", func(t *testing.T) {
		xs, err := fs.ReadDir(fsys, "static/img/icons")
		if err != nil {
			t.Fatal(err)
		}
		if exp, act := 1, len(xs); exp != act {
			t.Fatalf("expected %d entries, got %d", exp, act)
		}
		if exp, act := "favicon.ico", xs[0].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
	})
	t.Run("list mount point with prefix mount ignored", func(t *testing.T) {
		xs, err := fs.ReadDir(fsys, "static/img/icons/a")
		if err != nil {
			t.Fatal(err)
		}
		if exp, act := 1, len(xs); exp != act {
			t.Fatalf("expected %d entries, got %d", exp, act)
		}
		if exp, act := "robots.txt", xs[0].Name(); exp != act {
			t.Fatalf("expected entry %s, got %s", exp, act)
		}
	})
}
