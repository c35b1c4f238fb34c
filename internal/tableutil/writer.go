// SPDX-License-Identifier: MIT
// Package tableutil builds the aligned tables printed by syncer.
package tableutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// Placeholder fills empty cells so columns stay aligned.
const Placeholder = "-"

// New creates a tabwriter with syncer's spacing. stripEscape hides the
// termstyle escape bytes from the output.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers ...string) error {
	if noHeaders {
		return nil
	}
	return PrintRow(w, headers...)
}

// PrintRow writes one tab-separated row, substituting Placeholder for
// blank cells.
func PrintRow(w io.Writer, cells ...string) error {
	out := make([]string, len(cells))
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			c = Placeholder
		}
		out[i] = c
	}
	_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
	return err
}

// Truncate shortens value to limit runes with a trailing ellipsis. A
// non-positive limit disables truncation.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
