// Copyright (C) 2026 megolm-export contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyvault-project/megolm-export/config"
	"github.com/keyvault-project/megolm-export/internal/logger"
)

var configPath string

// cfg is loaded once in the root command's PersistentPreRunE and read by
// the export/import subcommands for their defaults.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "megolm-export",
	Short: "Megolm session key export/import CLI",
	Long: `megolm-export reads and writes the passphrase-protected, armored
Megolm session key export format used to move end-to-end-encrypted group
chat session keys between clients.

This tool supports:
- Exporting every reconstructible inbound session from a session store
- Importing an armored export file back into a session store`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		if level, err := logger.ParseLevel(cfg.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
		logger.GetDefaultLogger().SetPrettyPrint(cfg.Logging.Pretty)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")

	// Note: commands are registered in their respective files
	// - export.go: exportCmd
	// - import.go: importCmd
}
