// SPDX-License-Identifier: MIT
// Package cliio holds the interactive and tabular I/O helpers of the CLI.
package cliio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/skaphos/syncer/internal/tableutil"
)

// Confirm asks question and reads a yes/no answer from in. Anything but
// y/yes, including EOF, is a no.
func Confirm(out io.Writer, in io.Reader, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	return choice == "y" || choice == "yes", nil
}

// TableOptions controls WriteTable.
type TableOptions struct {
	NoHeaders bool
}

// WriteTable renders headers and rows as an aligned table. Cells may carry
// termstyle colors; their escape markers never reach out.
func WriteTable(out io.Writer, opts TableOptions, headers []string, rows [][]string) error {
	w := tableutil.New(out, true)
	if err := tableutil.PrintHeaders(w, opts.NoHeaders, headers...); err != nil {
		return err
	}
	for _, row := range rows {
		if err := tableutil.PrintRow(w, row...); err != nil {
			return err
		}
	}
	return w.Flush()
}
