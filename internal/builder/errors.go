package builder

import (
	"errors"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// CompileErr wraps the engine's diagnostics for a failed compilation. The
// rendered message includes every error with its file, line and column so
// nothing the engine reports is lost.
type CompileErr struct {
	Messages []api.Message
}

func (err *CompileErr) Error() string {
	formatted := api.FormatMessages(err.Messages, api.FormatMessagesOptions{
		Kind: api.ErrorMessage,
	})
	return strings.TrimSpace(strings.Join(formatted, ""))
}

// ErrorKind classifies a build error for metrics labels: "compile" for
// engine diagnostics, "config" for everything caught before the engine ran.
func ErrorKind(err error) string {
	var compileErr *CompileErr
	if errors.As(err, &compileErr) {
		return "compile"
	}
	return "config"
}

func formatWarnings(messages []api.Message) []string {
	if len(messages) == 0 {
		return nil
	}
	formatted := api.FormatMessages(messages, api.FormatMessagesOptions{
		Kind: api.WarningMessage,
	})
	warnings := make([]string, 0, len(formatted))
	for _, w := range formatted {
		warnings = append(warnings, strings.TrimSpace(w))
	}
	return warnings
}
