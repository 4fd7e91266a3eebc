package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/bundlectl/bundlectl/internal/config"
	"github.com/bundlectl/bundlectl/internal/logging"
	"github.com/bundlectl/bundlectl/internal/progress"
)

// Asset is one file emitted by a build, named relative to the output
// directory. Group records the logical origin: the entry chunk name for
// compiled assets, "sourcemap" for map files, "html" for generated pages and
// "static" for copied files.
type Asset struct {
	Name  string
	Bytes int64
	Group string
}

// Result summarizes one successful build pass.
type Result struct {
	Assets   []Asset
	Warnings []string
}

func (r *Result) TotalBytes() int64 {
	var total int64
	for _, a := range r.Assets {
		total += a.Bytes
	}
	return total
}

// Builder performs a single build pass: it hands the build configuration to
// the bundling engine, writes the emitted assets, runs the configured plugins
// and reports the outcome. It holds no state between passes.
type Builder struct {
	build *config.Build
	log   *logging.Logger
	bar   *progress.Bar
}

func New() *Builder {
	return &Builder{
		log: logging.NewLogger(logging.Config{Level: logging.LogLevelError}),
		bar: progress.New(false, ""),
	}
}

func (b *Builder) WithConfig(build *config.Build) *Builder {
	b.build = build
	return b
}

func (b *Builder) WithLogger(log *logging.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) WithProgress(bar *progress.Bar) *Builder {
	b.bar = bar
	return b
}

// Build runs exactly one compilation. It returns a *CompileErr when the
// engine reports errors and a plain error for configuration problems that are
// caught before the engine is invoked. Nothing is written to the output
// directory unless the compilation succeeded.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if b.build == nil {
		return nil, fmt.Errorf("builder has no build configuration")
	}

	if _, err := os.Stat(b.build.Entry); err != nil {
		return nil, fmt.Errorf("entry %q: %w", b.build.Entry, err)
	}

	options, err := b.engineOptions()
	if err != nil {
		return nil, err
	}

	b.log.Debugf("compiling entry %q", b.build.Entry)
	compiled := api.Build(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(compiled.Errors) > 0 {
		return nil, &CompileErr{Messages: compiled.Errors}
	}

	if hasPlugin(b.build, func(p *config.Plugin) bool { return p.Clean != nil }) {
		if err := wipeDir(b.build.Output.Dir); err != nil {
			return nil, fmt.Errorf("clean output dir: %w", err)
		}
	}

	result := &Result{Warnings: formatWarnings(compiled.Warnings)}

	if err := b.writeCompiled(compiled, result); err != nil {
		return nil, err
	}

	var copies []*config.CopyPlugin
	for _, p := range b.build.Plugins {
		if p.Copy != nil {
			copies = append(copies, p.Copy)
		}
	}
	if len(copies) > 0 {
		if err := b.copyStatic(copies, result); err != nil {
			return nil, fmt.Errorf("copy plugin: %w", err)
		}
	}

	for _, p := range b.build.Plugins {
		if p.HTML != nil {
			if err := b.emitHTML(p.HTML, result); err != nil {
				return nil, fmt.Errorf("html plugin: %w", err)
			}
		}
	}

	return result, nil
}

// writeCompiled materializes the engine's in-memory output files and records
// them as assets, classified via the engine metafile.
func (b *Builder) writeCompiled(compiled api.BuildResult, result *Result) error {
	groups, err := outputGroups(compiled.Metafile, b.build)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.build.Output.Dir, 0o755); err != nil {
		return err
	}

	for _, file := range compiled.OutputFiles {
		rel, err := filepath.Rel(b.build.Output.Dir, file.Path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(file.Path, file.Contents, 0o644); err != nil {
			return err
		}

		result.Assets = append(result.Assets, Asset{
			Name:  rel,
			Bytes: int64(len(file.Contents)),
			Group: groups.group(rel),
		})
		b.bar.Add(1)
	}
	return nil
}

func (b *Builder) engineOptions() (api.BuildOptions, error) {
	options := api.BuildOptions{
		EntryPoints: []string{b.build.Entry},
		Outdir:      b.build.Output.Dir,
		EntryNames:  entryNames(b.build),
		Bundle:      true,
		Write:       false,
		Metafile:    true,
		LogLevel:    api.LogLevelSilent,
	}

	if b.build.SourceMapEnabled() {
		options.Sourcemap = api.SourceMapLinked
	}

	if b.build.Minify() {
		options.MinifyWhitespace = true
		options.MinifyIdentifiers = true
		options.MinifySyntax = true
	}

	target, err := ruleTarget(b.build.Rules)
	if err != nil {
		return options, err
	}
	options.Target = target

	if len(b.build.Rules) > 0 {
		plugin, err := rulesPlugin(b.build.Rules)
		if err != nil {
			return options, err
		}
		options.Plugins = append(options.Plugins, plugin)
	}

	for _, p := range b.build.Plugins {
		if p.Define != nil {
			if options.Define == nil {
				options.Define = make(map[string]string, len(p.Define.Values))
			}
			for k, v := range p.Define.Values {
				options.Define[k] = v
			}
		}
	}

	return options, nil
}

// entryNames translates the configured filename pattern into the engine's
// entry naming scheme: the [name] placeholder is substituted with the build
// name here, and the extension is dropped because the engine appends its own.
func entryNames(build *config.Build) string {
	pattern := build.Output.Filename
	pattern = strings.TrimSuffix(pattern, filepath.Ext(pattern))
	return strings.ReplaceAll(pattern, "[name]", build.Name)
}

func hasPlugin(build *config.Build, match func(*config.Plugin) bool) bool {
	for _, p := range build.Plugins {
		if match(p) {
			return true
		}
	}
	return false
}

// wipeDir removes the contents of path, not the directory itself.
func wipeDir(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := os.RemoveAll(filepath.Join(path, f.Name())); err != nil {
			return err
		}
	}

	return nil
}
