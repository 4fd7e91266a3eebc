package builder

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gobwas/glob"

	"github.com/bundlectl/bundlectl/internal/config"
)

// loaders are the transform implementations a rule may reference. The names
// resolve inside the bundlectl module, independent of the consuming project.
var loaders = map[string]api.Loader{
	"js":      api.LoaderJS,
	"jsx":     api.LoaderJSX,
	"ts":      api.LoaderTS,
	"tsx":     api.LoaderTSX,
	"css":     api.LoaderCSS,
	"json":    api.LoaderJSON,
	"text":    api.LoaderText,
	"file":    api.LoaderFile,
	"dataurl": api.LoaderDataURL,
	"binary":  api.LoaderBinary,
}

// targets are the language levels accepted as rule options, in the manner of
// a compatibility preset. The last one across all rules wins.
var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

type compiledRule struct {
	test    glob.Glob
	exclude glob.Glob
	loader  api.Loader
}

func (r compiledRule) matches(p string) bool {
	if r.exclude != nil && (r.exclude.Match(p) || r.exclude.Match(path.Base(p))) {
		return false
	}
	return r.test.Match(p) || r.test.Match(path.Base(p))
}

func compileRules(rules config.Rules) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		loader, ok := loaders[rule.Loader]
		if !ok {
			return nil, fmt.Errorf("unknown loader %q in rule %q", rule.Loader, rule.Test)
		}

		cr := compiledRule{loader: loader}

		var err error
		if cr.test, err = glob.Compile(rule.Test); err != nil {
			return nil, fmt.Errorf("rule test %q: %w", rule.Test, err)
		}
		if rule.Exclude != "" {
			if cr.exclude, err = glob.Compile(rule.Exclude); err != nil {
				return nil, fmt.Errorf("rule exclude %q: %w", rule.Exclude, err)
			}
		}

		compiled = append(compiled, cr)
	}
	return compiled, nil
}

// ruleTarget folds the rule options into the engine's language target.
// Options other than the known language levels are configuration errors.
func ruleTarget(rules config.Rules) (api.Target, error) {
	target := api.DefaultTarget
	for _, rule := range rules {
		for _, opt := range rule.Options {
			t, ok := targets[opt]
			if !ok {
				return target, fmt.Errorf("unknown transform option %q in rule %q", opt, rule.Test)
			}
			target = t
		}
	}
	return target, nil
}

// rulesPlugin installs the transform rules as an engine load plugin. Every
// file the engine resolves is matched against the rules in configuration
// order; the first match decides the loader, and files matching no rule fall
// through to the engine's default handling.
func rulesPlugin(rules config.Rules) (api.Plugin, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return api.Plugin{}, err
	}

	return api.Plugin{
		Name: "bundlectl-rules",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `.*`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				rel := filepath.ToSlash(args.Path)
				for _, rule := range compiled {
					if !rule.matches(rel) {
						continue
					}
					bs, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					contents := string(bs)
					return api.OnLoadResult{Contents: &contents, Loader: rule.loader}, nil
				}
				return api.OnLoadResult{}, nil // no rule matched, use the default loader
			})
		},
	}, nil
}
