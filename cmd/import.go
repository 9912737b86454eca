package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/validate"
)

// Import command flags.
var (
	importFlagDryRun bool
	importFlagForce  bool
)

// importCmd loads clips from a file written by export or doctor --export.
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import clips from a file",
	Long: `Import clips from a keyline backup, a doctor --export salvage file or a
single clip document. Existing clips are skipped unless --force is given.

Examples:
  keyline import backup.json
  keyline import backup.json --dry-run
  keyline import walk.json --force`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importFlagDryRun, "dry-run", "n", false, "Preview without writing")
	importCmd.Flags().BoolVarP(&importFlagForce, "force", "F", false, "Overwrite existing clips")
	rootCmd.AddCommand(importCmd)
}

// importStats counts what an import did.
type importStats struct {
	Imported int `json:"imported"`
	Replaced int `json:"replaced"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.NewUserError(fmt.Sprintf("cannot read %s", args[0]), "Check the file path.")
	}

	backup, format, err := model.DecodeBackup(data)
	if err != nil {
		return errors.NewUserError(err.Error(), "Pass a file written by 'keyline export' or 'keyline doctor --export'.")
	}
	logging.DebugLog("import decoded", "format", format, "clips", len(backup.Clips))

	stats, err := importClips(backup.Clips)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(struct {
			Format string `json:"format"`
			DryRun bool   `json:"dry_run"`
			importStats
		}{format, importFlagDryRun, stats})
	}

	cli := ctx.CLIFormatter()
	if importFlagDryRun {
		cli.Title("Dry run: " + format + " import preview")
	} else {
		cli.Success("Import complete (" + format + ")")
	}
	cli.Printf("  Imported: %d\n", stats.Imported)
	if stats.Replaced > 0 {
		cli.Printf("  Replaced: %d\n", stats.Replaced)
	}
	if stats.Skipped > 0 {
		cli.Printf("  Skipped (exists): %d\n", stats.Skipped)
	}
	if stats.Invalid > 0 {
		cli.Printf("  Invalid names: %d\n", stats.Invalid)
	}
	return nil
}

func importClips(docs []*model.ClipDoc) (importStats, error) {
	var stats importStats
	for _, d := range docs {
		if validate.ClipName(d.Name) != nil {
			stats.Invalid++
			continue
		}
		exists, err := ctx.Clips.Exists(d.Name)
		if err != nil {
			return stats, err
		}
		switch {
		case exists && !importFlagForce:
			stats.Skipped++
			continue
		case importFlagDryRun:
		case exists:
			err = ctx.Clips.Save(d)
		default:
			err = ctx.Clips.Create(d)
		}
		if err != nil {
			return stats, errors.Wrapf(err, "import clip %q", d.Name)
		}
		if exists {
			stats.Replaced++
		} else {
			stats.Imported++
		}
	}
	return stats, nil
}
