package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/cosmicblog"
	"github.com/eringen/cosmicblog/cosmic"
)

var listCmd = &cobra.Command{
	Use:   "list [posts|authors|categories]",
	Short: "Lists the objects in the local database",
	Long: `The list command prints the type, slug, status and title of every object
in the local database, drafts included. With an argument only objects of that
type are listed.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{cosmic.TypePosts, cosmic.TypeAuthors, cosmic.TypeCategories},
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := appConfig.DatabasePath
		if dbPath == "" {
			dbPath = defaultDatabasePath
		}
		store, err := cosmicblog.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", dbPath, err)
		}
		defer store.Close()

		types := []string{cosmic.TypeCategories, cosmic.TypeAuthors, cosmic.TypePosts}
		if len(args) == 1 {
			types = args
		}
		return listObjects(cmd.Context(), cmd.OutOrStdout(), store, types)
	},
}

func listObjects(ctx context.Context, out io.Writer, store *cosmicblog.Store, types []string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSLUG\tSTATUS\tTITLE")
	for _, typ := range types {
		objs, err := store.Objects(ctx, typ)
		if err != nil {
			return fmt.Errorf("list %s: %w", typ, err)
		}
		for _, o := range objs {
			title := o.Title
			if o.IsPost() && o.Metadata["featured"] == true {
				title += " (featured)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Type, o.Slug, o.Status, title)
		}
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().String("db", defaultDatabasePath, "local content database to read")
	rootCmd.AddCommand(listCmd)
}
