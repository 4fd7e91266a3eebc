// Package templates ships the default HTML template with the bundlectl
// module, so generated pages do not depend on files in the consuming project.
package templates

import (
	_ "embed"
)

//go:embed "index.html"
var indexHTML []byte

func IndexHTML() []byte {
	return indexHTML
}
