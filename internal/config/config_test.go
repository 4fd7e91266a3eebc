package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bundlectl/bundlectl/internal/config"
)

func TestParseDefaults(t *testing.T) {
	root, err := config.Parse([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	build := root.Build
	if build == nil {
		t.Fatal("expected build section to be defaulted")
	}
	if exp, act := config.DefaultEntry, build.Entry; exp != act {
		t.Fatalf("expected entry %q, got %q", exp, act)
	}
	if exp, act := config.DefaultOutDir, build.Output.Dir; exp != act {
		t.Fatalf("expected output dir %q, got %q", exp, act)
	}
	if exp, act := config.DefaultFilename, build.Output.Filename; exp != act {
		t.Fatalf("expected filename %q, got %q", exp, act)
	}
	if exp, act := config.ModeDevelopment, build.Mode; exp != act {
		t.Fatalf("expected mode %q, got %q", exp, act)
	}
	if !build.SourceMapEnabled() {
		t.Fatal("expected source maps on by default")
	}
	if len(build.Plugins) != 1 || build.Plugins[0].HTML == nil {
		t.Fatalf("expected a default html plugin, got %v", build.Plugins)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		note    string
		yaml    string
		wantErr string
	}{
		{
			note: "complete build section",
			yaml: `
build:
  name: app
  entry: web/main.js
  output:
    dir: public
    filename: "[name].js"
  mode: production
  sourcemap: false
  rules:
    - test: "*.txt"
      loader: text
      options: [es2017]
      exclude: "node_modules/**"
  plugins:
    - html:
        title: App
    - copy:
        from: static
        to: assets
        exclude: ["*.md"]
    - define:
        values:
          __DEBUG__: "false"
    - clean:
`,
		},
		{
			note: "watch and server sections",
			yaml: `
watch:
  paths: [src, vendor]
  debounce: 500ms
server:
  addr: 127.0.0.1:3000
`,
		},
		{
			note:    "unknown top-level key",
			yaml:    `bundles: {}`,
			wantErr: "bundles",
		},
		{
			note: "invalid mode",
			yaml: `
build:
  mode: turbo
`,
			wantErr: "mode",
		},
		{
			note: "rule without loader",
			yaml: `
build:
  rules:
    - test: "*.js"
`,
			wantErr: "loader",
		},
		{
			note: "malformed rule test pattern",
			yaml: `
build:
  rules:
    - test: "[oops"
      loader: js
`,
			wantErr: "[oops",
		},
		{
			note: "copy plugin without source",
			yaml: `
build:
  plugins:
    - copy:
        to: assets
`,
			wantErr: "from",
		},
		{
			note: "invalid debounce",
			yaml: `
watch:
  debounce: soon
`,
			wantErr: "soon",
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.yaml))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	root, err := config.Parse([]byte(`
build:
  name: app
  mode: production
  sourcemap: false
  rules:
    - test: "*.jsx"
      loader: jsx
plugins:
`))
	if err == nil {
		// top-level "plugins" key is invalid
		t.Fatal("expected schema error for misplaced plugins key")
	}

	root, err = config.Parse([]byte(`
build:
  name: app
  mode: production
  sourcemap: false
  rules:
    - test: "*.jsx"
      loader: jsx
watch:
  debounce: 2s
`))
	if err != nil {
		t.Fatal(err)
	}

	if root.Build.SourceMapEnabled() {
		t.Fatal("expected source maps disabled")
	}
	if !root.Build.Minify() {
		t.Fatal("expected production mode to minify")
	}
	if exp, act := time.Duration(2*time.Second), time.Duration(root.Watch.Debounce); exp != act {
		t.Fatalf("expected debounce %v, got %v", exp, act)
	}

	want := config.Rules{{Test: "*.jsx", Loader: "jsx"}}
	if !root.Build.Rules.Equal(want) {
		t.Fatalf("unexpected rules: %v", cmp.Diff(want, root.Build.Rules))
	}
}

func TestResolvePaths(t *testing.T) {
	root, err := config.Parse([]byte(`
build:
  entry: src/app.js
  output:
    dir: out
  plugins:
    - html:
        template: web/page.html
    - copy:
        from: public
`))
	if err != nil {
		t.Fatal(err)
	}

	workdir := t.TempDir()
	if err := root.Build.ResolvePaths(workdir); err != nil {
		t.Fatal(err)
	}

	if exp, act := filepath.Join(workdir, "src", "app.js"), root.Build.Entry; exp != act {
		t.Fatalf("expected entry %q, got %q", exp, act)
	}
	if exp, act := filepath.Join(workdir, "out"), root.Build.Output.Dir; exp != act {
		t.Fatalf("expected output dir %q, got %q", exp, act)
	}
	for _, p := range root.Build.Plugins {
		if p.HTML != nil && p.HTML.Template != "" && !filepath.IsAbs(p.HTML.Template) {
			t.Fatalf("expected absolute template path, got %q", p.HTML.Template)
		}
		if p.Copy != nil && !filepath.IsAbs(p.Copy.From) {
			t.Fatalf("expected absolute copy source, got %q", p.Copy.From)
		}
	}

	// Absolute paths are left alone.
	abs := root.Build.Entry
	if err := root.Build.ResolvePaths("/elsewhere"); err != nil {
		t.Fatal(err)
	}
	if abs != root.Build.Entry {
		t.Fatalf("expected absolute entry to stay %q, got %q", abs, root.Build.Entry)
	}
}

func TestLoadMerge(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.yaml")
	if err := os.WriteFile(base, []byte(`
build:
  entry: src/main.js
  mode: development
`), 0o644); err != nil {
		t.Fatal(err)
	}

	override := filepath.Join(dir, "prod.yaml")
	if err := os.WriteFile(override, []byte(`
build:
  mode: production
`), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := config.Load([]string{base, override})
	if err != nil {
		t.Fatal(err)
	}

	if exp, act := "src/main.js", root.Build.Entry; exp != act {
		t.Fatalf("expected entry %q, got %q", exp, act)
	}
	if exp, act := config.ModeProduction, root.Build.Mode; exp != act {
		t.Fatalf("expected mode %q, got %q", exp, act)
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	root, err := config.Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if root.Build == nil || root.Build.Entry != config.DefaultEntry {
		t.Fatalf("expected defaulted build, got %+v", root.Build)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load([]string{"no/such/file.yaml"}); err == nil {
		t.Fatal("expected an error for a missing configuration file")
	}
}

func TestEqual(t *testing.T) {
	parse := func(s string) *config.Root {
		t.Helper()
		root, err := config.Parse([]byte(s))
		if err != nil {
			t.Fatal(err)
		}
		return root
	}

	a := parse(`
build:
  entry: src/index.js
  rules:
    - test: "*.txt"
      loader: text
`)
	b := parse(`
build:
  entry: src/index.js
  rules:
    - test: "*.txt"
      loader: text
`)
	c := parse(`
build:
  entry: src/other.js
`)

	if !a.Equal(b) {
		t.Fatal("expected identical configurations to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected different configurations to differ")
	}
}
