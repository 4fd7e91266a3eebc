// Package report renders build outcomes for human consumption.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/bundlectl/bundlectl/internal/builder"
)

// Summary writes the per-asset build summary table: asset name, size and the
// logical group the asset originates from.
func Summary(w io.Writer, result *builder.Result) error {
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, warning)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Asset", "Size", "Group")
	for _, asset := range result.Assets {
		if err := table.Append(asset.Name, humanize.IBytes(uint64(asset.Bytes)), asset.Group); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d assets, %s total\n", len(result.Assets), humanize.IBytes(uint64(result.TotalBytes())))
	return err
}
