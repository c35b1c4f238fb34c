// SPDX-License-Identifier: MIT
package gitx

import (
	"strconv"
	"strings"
)

// ParsePorcelainLines splits `git status --porcelain` output into one entry
// per path. The two status columns are preserved.
func ParsePorcelainLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitLines returns the non-blank, trimmed lines of output.
func SplitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseCount parses the output of `git rev-list --count`. Garbage reads as 0.
func ParseCount(output string) int {
	n, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
