// SPDX-License-Identifier: MIT
package syncer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncer/internal/config"
)

var flagForce bool

var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Create a named configuration from the template",
	Long:  "init writes NAME.json into " + config.EnvConfigDir + " (default ~/.config/syncer). Edit it to list your repositories.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path, err := config.Init(dir, args[0], flagForce)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}
