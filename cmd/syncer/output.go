// SPDX-License-Identifier: MIT
package syncer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want table, json or yaml)", format)
	}
}

func isTabularFormat(format string) bool {
	return strings.ToLower(strings.TrimSpace(format)) == formatTable
}

// writeStructured renders v as JSON or YAML on stdout.
func writeStructured(cmd *cobra.Command, format string, v any) error {
	var data []byte
	var err error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case formatYAML:
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	logOutputWriteFailure(cmd, format, err)
	return nil
}

// logOutputWriteFailure notes a failed stdout write; a closed pipe is not a
// command failure.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}
