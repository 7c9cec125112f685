package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"runs"},
	Short:   "Manage stored run snapshots",
	Long:    `List, inspect, and remove the run snapshots kept by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	Run: func(cmd *cobra.Command, args []string) {
		store, closer := getStore(cmd)
		defer closeQuietly(closer)
		if err := cli.ListSessions(cmd.Context(), store, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print a stored run snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer := getStore(cmd)
		defer closeQuietly(closer)
		if err := cli.InspectSession(cmd.Context(), store, args[0], os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more stored runs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer := getStore(cmd)
		defer closeQuietly(closer)
		if err := cli.RemoveSessions(cmd.Context(), store, args, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func getStore(cmd *cobra.Command) (ports.SnapshotStore, io.Closer) {
	store, _, closer, err := cli.OpenStore(optionsFromFlags(cmd))
	if err == nil && store == nil {
		err = fmt.Errorf("runs are not stored with --store none")
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return store, closer
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
