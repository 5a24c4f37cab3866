package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyvault-project/megolm-export/keyexport"
)

var (
	importStoreDir      string
	importInFile        string
	importPassphraseEnv string
	importUserID        string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an armored session export file into a store",
	Example: `  # Import into a fresh store, prompted for the passphrase
  megolm-export import --store ./bob-sessions --in alice-keys.txt`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importStoreDir, "store", "", "session store directory (defaults to the configured store directory, created if missing)")
	importCmd.Flags().StringVar(&importInFile, "in", "", "armored export file to import (required)")
	importCmd.Flags().StringVar(&importPassphraseEnv, "passphrase-env", "", "read the passphrase from this environment variable instead of prompting")
	importCmd.Flags().StringVar(&importUserID, "user-id", "", "account to attribute a freshly created store to")

	importCmd.MarkFlagRequired("in")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir := importStoreDir
	if dir == "" {
		dir = cfg.Store.Directory
	}

	store, err := loadStore(dir, importUserID)
	if err != nil {
		return fmt.Errorf("load session store: %w", err)
	}

	data, err := os.ReadFile(importInFile)
	if err != nil {
		return fmt.Errorf("read export file: %w", err)
	}

	passphrase, err := readPassphrase(importPassphraseEnv)
	if err != nil {
		return err
	}

	count, err := keyexport.Import(ctx, store, data, passphrase)
	if err != nil && !errors.Is(err, keyexport.ErrEncryptionDisabled) {
		return fmt.Errorf("import: %w", err)
	}

	if saveErr := saveStore(ctx, dir, store); saveErr != nil {
		return fmt.Errorf("save session store: %w", saveErr)
	}

	fmt.Fprintf(os.Stderr, "Imported %d session(s) into %s\n", count, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}
