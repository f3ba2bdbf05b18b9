package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kh-ctl",
		Short:         "Manage the API key held by a keyhost server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverURL := os.Getenv("KH_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:3000"
	}
	root.PersistentFlags().String("server", serverURL, "keyhost server base URL")

	root.AddCommand(newGetCmd(), newSetCmd(), newRmCmd(), newInspectCmd())
	return root
}
