package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bundlectl/bundlectl/internal/builder"
	"github.com/bundlectl/bundlectl/internal/report"
)

func TestSummary(t *testing.T) {
	result := &builder.Result{
		Assets: []builder.Asset{
			{Name: "main.bundle.js", Bytes: 2048, Group: "main"},
			{Name: "main.bundle.js.map", Bytes: 4096, Group: "sourcemap"},
			{Name: "index.html", Bytes: 512, Group: "html"},
		},
		Warnings: []string{"something looked off"},
	}

	var buf bytes.Buffer
	if err := report.Summary(&buf, result); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"something looked off",
		"main.bundle.js",
		"sourcemap",
		"2.0 KiB",
		"3 assets",
		"6.5 KiB total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Summary(&buf, &builder.Result{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0 assets") {
		t.Fatalf("expected an empty summary, got:\n%s", buf.String())
	}
}
