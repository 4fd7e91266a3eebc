package builder

import (
	"bytes"
	"cmp"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/bundlectl/bundlectl/templates"

	"github.com/bundlectl/bundlectl/internal/config"
)

type htmlData struct {
	Title       string
	Scripts     []string
	Stylesheets []string
}

// emitHTML renders the page template with references to every script and
// stylesheet emitted so far and writes it into the output directory. The
// default template is embedded in the bundlectl module; a project may point
// the plugin at its own.
func (b *Builder) emitHTML(plugin *config.HTMLPlugin, result *Result) error {
	source := templates.IndexHTML()
	if plugin.Template != "" {
		bs, err := os.ReadFile(plugin.Template)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		source = bs
	}

	tmpl, err := template.New("index").Parse(string(source))
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	data := htmlData{Title: cmp.Or(plugin.Title, b.build.Name)}
	for _, asset := range result.Assets {
		switch {
		case asset.Group == "sourcemap" || asset.Group == "static" || asset.Group == "html":
		case strings.HasSuffix(asset.Name, ".js"):
			data.Scripts = append(data.Scripts, asset.Name)
		case strings.HasSuffix(asset.Name, ".css"):
			data.Stylesheets = append(data.Stylesheets, asset.Name)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	filename := cmp.Or(plugin.Filename, "index.html")
	if err := os.WriteFile(filepath.Join(b.build.Output.Dir, filename), buf.Bytes(), 0o644); err != nil {
		return err
	}

	result.Assets = append(result.Assets, Asset{
		Name:  filename,
		Bytes: int64(buf.Len()),
		Group: "html",
	})
	b.bar.Add(1)
	return nil
}
