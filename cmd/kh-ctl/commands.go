package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"keyhost/internal/client"
	"keyhost/internal/server"
	"keyhost/internal/shared"

	"github.com/spf13/cobra"
)

func clientFor(cmd *cobra.Command) (*client.Client, error) {
	u, err := cmd.Flags().GetString("server")
	if err != nil {
		return nil, err
	}
	return client.New(u, nil), nil
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd)
			if err != nil {
				return err
			}
			key, err := c.GetKey(cmd.Context())
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no key stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY",
		Short: "Store a key, replacing any previous one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd)
			if err != nil {
				return err
			}
			if err := c.SetKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored key %s\n", shared.Fingerprint(strings.TrimSpace(args[0])))
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm",
		Short: "Remove the stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteKey(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

// newInspectCmd reads the store on disk without a running server and prints
// only the fingerprint.
func newInspectCmd() *cobra.Command {
	var dataDir, kind string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a local key store without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var backing string
			switch kind {
			case shared.StoreFile:
				backing = filepath.Join(dataDir, server.KeyFileName)
			case shared.StoreSQLite:
				backing = filepath.Join(dataDir, server.SQLiteFileName)
			default:
				return fmt.Errorf("store %q has nothing on disk to inspect", kind)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "store: %s (%s)\n", kind, dataDir)

			// opening a missing sqlite file would create it
			if _, err := os.Stat(backing); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(out, "key: absent")
					return nil
				}
				return err
			}

			store, err := server.OpenStore(&shared.ServerConfig{DataDir: dataDir, Store: kind})
			if err != nil {
				return err
			}
			defer store.Close()

			key, err := store.ReadKey()
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(out, "key: absent")
				return nil
			}
			fmt.Fprintf(out, "key: present, %d chars, fingerprint %s\n", len([]rune(key)), shared.Fingerprint(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", filepath.Join(".", "data"), "data directory")
	cmd.Flags().StringVar(&kind, "store", shared.StoreFile, "store backend: file or sqlite")
	return cmd
}
