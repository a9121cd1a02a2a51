package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/cosmicblog"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Lists the post paths to pre-render",
	Long: `The paths command prints one post page path per line. If the content
source cannot be reached it prints nothing and exits successfully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cosmicblog.New(appConfig.site(), cosmicblog.ViewFuncs{})
		if err := app.Init(); err != nil {
			return err
		}
		defer app.Close()

		for _, p := range app.StaticPaths(cmd.Context()) {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().String("db", "", "read from a local content database instead of the Cosmic API")
	rootCmd.AddCommand(pathsCmd)
}
