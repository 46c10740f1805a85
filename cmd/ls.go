package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
)

var lsCmd = &cobra.Command{
	Use:   "ls <prefix>",
	Short: "List objects under a prefix",
	Long:  "Lists every object whose key starts with the prefix. Prints public URLs by default, bare keys with --keys, or full object details with --long.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		keys, _ := cmd.Flags().GetBool("keys")
		long, _ := cmd.Flags().GetBool("long")

		var result any
		switch {
		case long:
			result, err = st.List(ctx, args[0])
		case keys:
			result, err = blobstore.ListKeys(ctx, st, args[0])
		default:
			result, err = blobstore.ListURLs(ctx, st, args[0])
		}
		if err != nil {
			return eris.Wrap(err, "ls")
		}
		return writeResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	lsCmd.Flags().Bool("keys", false, "print object keys instead of URLs")
	lsCmd.Flags().BoolP("long", "l", false, "print key, size and modification time")
	rootCmd.AddCommand(lsCmd)
}
