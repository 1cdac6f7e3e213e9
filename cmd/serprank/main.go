package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/serprank/api/handler"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "serprank",
		Short: "serprank - search engine rank lookup",
		Long: `serprank reports the positions at which a URL appears in the organic
results of a search engine for a keyword phrase.

Supported providers: google (0), bing (1).`,
		SilenceUsage: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("serprank version %s\n", handler.Version)
		},
	}

	rootCmd.AddCommand(newServeCmd(), newLookupCmd(), versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
