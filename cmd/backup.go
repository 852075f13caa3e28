/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/Marcel-mosha/task-manager/config"
	"github.com/Marcel-mosha/task-manager/internal/backup"
	"github.com/Marcel-mosha/task-manager/internal/db"
	"github.com/Marcel-mosha/task-manager/internal/storage"
	"github.com/spf13/cobra"
)

var backupOutDir string

// backupCmd represents the backup command. It dumps the database with
// pg_dump, prints per-table record counts, and uploads the archive when
// object storage is configured.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the database and report record counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		uploader, err := storage.NewUploader(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		if uploader != nil {
			defer uploader.Close()
		}

		summary, err := backup.Run(ctx, dbConn, db.PostgresURL(cfg), backupOutDir, uploader, os.Stdout)
		if err != nil {
			return err
		}

		fmt.Printf("Backup complete: %s\n", summary.File)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVar(&backupOutDir, "out", ".", "directory for the backup archive")
}
