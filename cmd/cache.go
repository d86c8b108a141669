package cmd

import "github.com/spf13/cobra"

// cacheCmd groups sentiment score cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Sentiment score cache utilities",
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}
