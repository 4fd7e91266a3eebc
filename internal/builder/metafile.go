package builder

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bundlectl/bundlectl/internal/config"
)

// metafile mirrors the engine's metafile JSON, reduced to the parts needed to
// classify outputs.
type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	Bytes      int    `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
}

// outputClassifier maps emitted file names (relative to the output directory)
// to their logical group.
type outputClassifier struct {
	entry  map[string]struct{}
	name   string
	outDir string
}

func outputGroups(meta string, build *config.Build) (*outputClassifier, error) {
	var m metafile
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}

	c := &outputClassifier{
		entry:  make(map[string]struct{}, len(m.Outputs)),
		name:   build.Name,
		outDir: build.Output.Dir,
	}

	// Metafile output keys are paths relative to the engine's working
	// directory; normalize them to the output directory.
	for out, info := range m.Outputs {
		if info.EntryPoint == "" {
			continue
		}
		rel, err := c.relative(out)
		if err != nil {
			return nil, err
		}
		c.entry[rel] = struct{}{}
	}
	return c, nil
}

func (c *outputClassifier) relative(out string) (string, error) {
	abs := out
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(out); err != nil {
			return "", err
		}
	}
	rel, err := filepath.Rel(c.outDir, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (c *outputClassifier) group(rel string) string {
	if strings.HasSuffix(rel, ".map") {
		return "sourcemap"
	}
	if _, ok := c.entry[rel]; ok {
		return c.name
	}
	// Anything else is a secondary chunk split off the entry, or a file
	// emitted by the file loader.
	return "chunk"
}
