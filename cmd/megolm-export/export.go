package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyvault-project/megolm-export/keyexport"
)

var (
	exportStoreDir      string
	exportOutFile       string
	exportPassphraseEnv string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every reconstructible session in a store to an armored file",
	Example: `  # Export using a prompted passphrase
  megolm-export export --store ./alice-sessions --out alice-keys.txt

  # Export using a passphrase from the environment, for scripting
  MEGOLM_EXPORT_PASSPHRASE=hunter2 megolm-export export \
    --store ./alice-sessions --out alice-keys.txt --passphrase-env MEGOLM_EXPORT_PASSPHRASE`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportStoreDir, "store", "", "session store directory (defaults to the configured store directory)")
	exportCmd.Flags().StringVar(&exportOutFile, "out", "", "output file for the armored export (required)")
	exportCmd.Flags().StringVar(&exportPassphraseEnv, "passphrase-env", "", "read the passphrase from this environment variable instead of prompting")

	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir := exportStoreDir
	if dir == "" {
		dir = cfg.Store.Directory
	}

	store, err := loadStore(dir, "")
	if err != nil {
		return fmt.Errorf("load session store: %w", err)
	}

	passphrase, err := readPassphrase(exportPassphraseEnv)
	if err != nil {
		return err
	}

	blob, err := keyexport.ExportWithRounds(ctx, store, passphrase, cfg.KDF.Rounds)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := os.WriteFile(exportOutFile, blob, 0600); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported sessions to %s\n", exportOutFile)
	return nil
}
