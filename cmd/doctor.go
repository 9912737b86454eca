package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/storage"
)

// Doctor command flags.
var (
	doctorFlagRepair bool
	doctorFlagExport string
)

// doctorCmd checks the clip store.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the clip database for problems",
	Long: `Scan the clip database, decode every stored clip and check free disk space.

Examples:
  keyline doctor
  keyline doctor --export salvage.json
  keyline doctor --repair`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFlagRepair, "repair", false, "Back up the database and compact it")
	doctorCmd.Flags().StringVar(&doctorFlagExport, "export", "", "Write every readable clip to this JSON file")

	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	path := ctx.DB.Path()
	status := storage.CheckDatabaseIntegrity(ctx.DB)

	diskWarning := ""
	if path != "" {
		diskWarning = storage.CheckDiskSpaceWarning(path)
	}

	if doctorFlagExport != "" {
		n, err := storage.ExportSalvageableData(ctx.DB, doctorFlagExport)
		if err != nil {
			return err
		}
		if ctx.IsCLI() {
			ctx.CLIFormatter().Success(fmt.Sprintf("Exported %d clip(s) to %s", n, doctorFlagExport))
		}
	}

	if doctorFlagRepair {
		if path == "" {
			return errors.NewUserError("Nothing to repair in an in-memory store", "Run doctor against an on-disk database")
		}
		// Recovery reopens the store itself.
		if err := ctx.DB.Close(); err != nil {
			return err
		}
		backup, err := storage.AttemptRecovery(path)
		if err != nil {
			status.BackupPath = backup
			return err
		}
		// The compacted store has to read back cleanly before it is reported.
		db, err := storage.OpenWithIntegrityCheck(storage.Options{Path: path, NoLock: ctx.Config.Storage.NoLock})
		if err != nil {
			return err
		}
		ctx.DB = db
		status = storage.CheckDatabaseIntegrity(db)
		status.BackupPath = backup
		if ctx.IsCLI() {
			ctx.CLIFormatter().Success("Database compacted")
		}
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintDoctor(status, path, diskWarning)
	}
	ctx.CLIFormatter().PrintDoctor(status, path, diskWarning)
	return nil
}
