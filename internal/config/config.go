package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
)

// Internal configuration data structures for bundlectl.

// Defaults applied when the project ships no build file at all.
const (
	DefaultEntry    = "src/index.js"
	DefaultOutDir   = "dist"
	DefaultFilename = "[name].bundle.js"
	DefaultName     = "main"
)

// Root is the top-level configuration structure used by bundlectl.
type Root struct {
	Build  *Build  `json:"build,omitempty"`
	Server *Server `json:"server,omitempty"`
	Watch  *Watch  `json:"watch,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for the Root
// struct. It fills in the defaults so that downstream consumers never see a
// half-empty configuration.
func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw) // Assign the unmarshaled data back to the original struct
	return r.unmarshal()
}

func (r *Root) UnmarshalJSON(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawRoot

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal()
}

func (r *Root) Unmarshal() error {
	return r.unmarshal()
}

func (r *Root) unmarshal() error {
	r.Build = cmp.Or(r.Build, &Build{})
	r.Build.applyDefaults()
	return nil
}

func (r *Root) Equal(other *Root) bool {
	return fastEqual(r, other, func(r, other *Root) bool {
		return r.Build.Equal(other.Build) &&
			r.Server.Equal(other.Server) &&
			r.Watch.Equal(other.Watch)
	})
}

// Build describes one build pass: what to compile, where to put it, and which
// transforms and plugins participate. All project paths (entry, output
// directory, copy sources, a user-supplied HTML template) are interpreted
// relative to the invoking project's working directory, never relative to the
// bundlectl module itself.
type Build struct {
	Name      string  `json:"name,omitempty"`
	Entry     string  `json:"entry,omitempty"`
	Output    Output  `json:"output,omitzero"`
	Rules     Rules   `json:"rules,omitempty"`
	Plugins   Plugins `json:"plugins,omitempty"`
	Mode      string  `json:"mode,omitempty" enum:"development,production"`
	SourceMap *bool   `json:"sourcemap,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

func (b *Build) UnmarshalYAML(bs []byte) error {
	type rawBuild Build // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawBuild

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode build: %w", err)
	}

	*b = Build(raw)
	return b.validate()
}

func (b *Build) UnmarshalJSON(bs []byte) error {
	type rawBuild Build // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawBuild

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode build: %w", err)
	}

	*b = Build(raw)
	return b.validate()
}

func (b *Build) validate() error {
	switch b.Mode {
	case "", ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("invalid mode %q (want %q or %q)", b.Mode, ModeDevelopment, ModeProduction)
	}

	for _, rule := range b.Rules {
		if err := rule.validate(); err != nil {
			return err
		}
	}

	for _, plugin := range b.Plugins {
		if err := plugin.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (b *Build) applyDefaults() {
	b.Name = cmp.Or(b.Name, DefaultName)
	b.Entry = cmp.Or(b.Entry, DefaultEntry)
	b.Output.Dir = cmp.Or(b.Output.Dir, DefaultOutDir)
	b.Output.Filename = cmp.Or(b.Output.Filename, DefaultFilename)
	b.Mode = cmp.Or(b.Mode, ModeDevelopment)
	if !slices.ContainsFunc(b.Plugins, func(p *Plugin) bool { return p != nil && p.HTML != nil }) {
		b.Plugins = append(b.Plugins, &Plugin{HTML: &HTMLPlugin{}})
	}
}

// SourceMapEnabled reports the diagnostics mode; source maps are on unless
// switched off explicitly.
func (b *Build) SourceMapEnabled() bool {
	return b.SourceMap == nil || *b.SourceMap
}

func (b *Build) Minify() bool {
	return b.Mode == ModeProduction
}

// ResolvePaths anchors the entry and the output directory in the given
// working directory. This happens at configuration-construction time so that
// the behavior is fixed no matter where the built configuration travels.
func (b *Build) ResolvePaths(workdir string) error {
	var err error
	if b.Entry, err = resolve(workdir, b.Entry); err != nil {
		return fmt.Errorf("resolve entry: %w", err)
	}
	if b.Output.Dir, err = resolve(workdir, b.Output.Dir); err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	for _, p := range b.Plugins {
		if p.HTML != nil && p.HTML.Template != "" {
			if p.HTML.Template, err = resolve(workdir, p.HTML.Template); err != nil {
				return fmt.Errorf("resolve html template: %w", err)
			}
		}
		if p.Copy != nil {
			if p.Copy.From, err = resolve(workdir, p.Copy.From); err != nil {
				return fmt.Errorf("resolve copy source: %w", err)
			}
		}
	}
	return nil
}

func resolve(workdir, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Abs(filepath.Join(workdir, p))
}

func (b *Build) Equal(other *Build) bool {
	return fastEqual(b, other, func(b, other *Build) bool {
		return b.Name == other.Name &&
			b.Entry == other.Entry &&
			b.Output == other.Output &&
			b.Rules.Equal(other.Rules) &&
			b.Plugins.Equal(other.Plugins) &&
			b.Mode == other.Mode &&
			ptrEqual(b.SourceMap, other.SourceMap)
	})
}

// Output holds the emission target: the directory assets land in and the
// filename pattern for entry chunks. The pattern supports the [name]
// placeholder, substituted with the build name.
type Output struct {
	Dir      string `json:"dir,omitempty"`
	Filename string `json:"filename,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// Rule maps a file-matching pattern onto a transform implementation. Rules
// apply in configuration order; the first matching rule wins.
type Rule struct {
	Test    string    `json:"test"`
	Loader  string    `json:"loader"`
	Options StringSet `json:"options,omitempty"`
	Exclude string    `json:"exclude,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (r *Rule) validate() error {
	if r.Test == "" {
		return fmt.Errorf("rule is missing a test pattern")
	}
	if _, err := glob.Compile(r.Test); err != nil {
		return fmt.Errorf("failed to compile rule test pattern %q: %w", r.Test, err)
	}
	if r.Exclude != "" {
		if _, err := glob.Compile(r.Exclude); err != nil {
			return fmt.Errorf("failed to compile rule exclude pattern %q: %w", r.Exclude, err)
		}
	}
	if r.Loader == "" {
		return fmt.Errorf("rule %q is missing a loader", r.Test)
	}
	return nil
}

func (r *Rule) Equal(other *Rule) bool {
	return fastEqual(r, other, func(r, other *Rule) bool {
		return r.Test == other.Test &&
			r.Loader == other.Loader &&
			r.Options.Equal(other.Options) &&
			r.Exclude == other.Exclude
	})
}

type Rules []*Rule

func (a Rules) Equal(b Rules) bool {
	return slices.EqualFunc(a, b, (*Rule).Equal)
}

// Plugin is a single plugin directive. Exactly one of the option structs must
// be set; the set field names the plugin.
type Plugin struct {
	HTML   *HTMLPlugin   `json:"html,omitempty"`
	Copy   *CopyPlugin   `json:"copy,omitempty"`
	Define *DefinePlugin `json:"define,omitempty"`
	Clean  *CleanPlugin  `json:"clean,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// UnmarshalYAML normalizes the clean directive: "- clean:" carries a null
// value, which would otherwise leave every option struct nil.
func (p *Plugin) UnmarshalYAML(bs []byte) error {
	type rawPlugin Plugin // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawPlugin

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode plugin: %w", err)
	}

	*p = Plugin(raw)
	return p.normalize(func(v any) error { return yaml.Unmarshal(bs, v) })
}

func (p *Plugin) UnmarshalJSON(bs []byte) error {
	type rawPlugin Plugin // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawPlugin

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode plugin: %w", err)
	}

	*p = Plugin(raw)
	return p.normalize(func(v any) error { return json.Unmarshal(bs, v) })
}

func (p *Plugin) normalize(unmarshal func(any) error) error {
	if p.Clean != nil {
		return nil
	}
	var keys map[string]any
	if err := unmarshal(&keys); err != nil {
		return err
	}
	if _, ok := keys["clean"]; ok {
		p.Clean = &CleanPlugin{}
	}
	return nil
}

func (p *Plugin) validate() error {
	n := 0
	for _, set := range []bool{p.HTML != nil, p.Copy != nil, p.Define != nil, p.Clean != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("plugin directive must name exactly one plugin")
	}
	if p.Copy != nil {
		return p.Copy.validate()
	}
	return nil
}

func (p *Plugin) Name() string {
	switch {
	case p.HTML != nil:
		return "html"
	case p.Copy != nil:
		return "copy"
	case p.Define != nil:
		return "define"
	case p.Clean != nil:
		return "clean"
	}
	return "unknown"
}

func (p *Plugin) Equal(other *Plugin) bool {
	return fastEqual(p, other, func(p, other *Plugin) bool {
		return p.HTML.Equal(other.HTML) &&
			p.Copy.Equal(other.Copy) &&
			p.Define.Equal(other.Define) &&
			ptrEqual(p.Clean, other.Clean)
	})
}

type Plugins []*Plugin

func (a Plugins) Equal(b Plugins) bool {
	return slices.EqualFunc(a, b, (*Plugin).Equal)
}

// HTMLPlugin generates an HTML file referencing every emitted script and
// stylesheet. With no template given, the default template embedded in the
// bundlectl module is used, so the result does not depend on where the
// configuration is consumed from.
type HTMLPlugin struct {
	Template string `json:"template,omitempty"`
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (p *HTMLPlugin) Equal(other *HTMLPlugin) bool {
	return fastEqual(p, other, func(p, other *HTMLPlugin) bool {
		return *p == *other
	})
}

// CopyPlugin materializes a filtered static file tree into the output
// directory.
type CopyPlugin struct {
	From    string    `json:"from"`
	To      string    `json:"to,omitempty"`
	Include StringSet `json:"include,omitempty"`
	Exclude StringSet `json:"exclude,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (p *CopyPlugin) validate() error {
	if p.From == "" {
		return fmt.Errorf("copy plugin is missing a source directory")
	}
	for _, pattern := range slices.Concat(p.Include, p.Exclude) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("failed to compile copy pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (p *CopyPlugin) Equal(other *CopyPlugin) bool {
	return fastEqual(p, other, func(p, other *CopyPlugin) bool {
		return p.From == other.From &&
			p.To == other.To &&
			p.Include.Equal(other.Include) &&
			p.Exclude.Equal(other.Exclude)
	})
}

// DefinePlugin substitutes compile-time constants into the bundle.
type DefinePlugin struct {
	Values map[string]string `json:"values"`

	_ struct{} `additionalProperties:"false"`
}

func (p *DefinePlugin) Equal(other *DefinePlugin) bool {
	return fastEqual(p, other, func(p, other *DefinePlugin) bool {
		return maps.Equal(p.Values, other.Values)
	})
}

// CleanPlugin wipes the output directory before the build.
type CleanPlugin struct {
	_ struct{} `additionalProperties:"false"`
}

// Server configures the development server.
type Server struct {
	Addr string `json:"addr,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (s *Server) Equal(other *Server) bool {
	return fastEqual(s, other, func(s, other *Server) bool {
		return *s == *other
	})
}

func (s *Server) ListenAddr() string {
	if s == nil || s.Addr == "" {
		return "localhost:8080"
	}
	return s.Addr
}

// Watch configures the rebuild-on-change loop.
type Watch struct {
	Paths    StringSet `json:"paths,omitempty"`
	Debounce Duration  `json:"debounce,omitzero"`

	_ struct{} `additionalProperties:"false"`
}

func (w *Watch) Equal(other *Watch) bool {
	return fastEqual(w, other, func(w, other *Watch) bool {
		return w.Paths.Equal(other.Paths) &&
			w.Debounce == other.Debounce
	})
}

// Instead of marshaling and unmarshaling as int64 it uses strings, like "5m" or "0.5s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	val, err := time.ParseDuration(str)
	*d = Duration(val)
	return err
}

func (d *Duration) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	val, err := time.ParseDuration(s)
	*d = Duration(val)
	return err
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type StringSet []string

func (a StringSet) Equal(b StringSet) bool {
	return slices.Equal(a, b)
}

func Validate(data []byte) error {
	var config any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return err
	}

	return rootSchema.Validate(config)
}

// Parse decodes, validates and defaults a configuration document.
func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Load reads the configuration from the given files (merged in order) or
// returns the defaults when no files are given.
func Load(configFiles []string) (*Root, error) {
	if len(configFiles) == 0 {
		root := Root{}
		if err := root.Unmarshal(); err != nil {
			return nil, err
		}
		return &root, nil
	}

	for _, f := range configFiles {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("read configuration file: %w", err)
		}
	}

	bs, err := Merge(configFiles, false)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}

func ptrEqual[T comparable](a, b *T) bool {
	return fastEqual(a, b, func(a, b *T) bool { return *a == *b })
}

func fastEqual[V any](a, b *V, slowEqual func(a, b *V) bool) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return slowEqual(a, b)
}
