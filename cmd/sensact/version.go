package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sensact"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sensact",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sensact version %s\n", strings.TrimSpace(sensact.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
