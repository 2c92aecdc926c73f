package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docgen/internal/adapter/fs"
	"docgen/internal/ui"
	"docgen/internal/usecase"
)

var repairDryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair <file|dir>",
	Short: "Fix doc comments that contain a second start marker",
	Long: `A comment such as "/** stale /** fresh */" is left behind when an earlier
block was never closed. repair keeps only the text after the last start marker
of every such block.

Examples:
  docgen repair src/Main.java
  docgen repair core --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "report without writing")
}

func runRepair(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewRepairUseCase(fs.NewFiles(), st, cfg.Generate.Delimiters, repairDryRun, GetLogger())

	var results []*usecase.RepairResult
	if info.IsDir() {
		results, err = uc.RepairDir(target, fs.NewWalker(cfg.Files.Includes, cfg.Files.Excludes))
		if err != nil {
			return err
		}
	} else {
		result, err := uc.Repair(target)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	total := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			ui.Error("%s: %v", r.Path, r.Err)
		case r.Repaired > 0 && repairDryRun:
			ui.Info("%s: %d blocks would be repaired", r.Path, r.Repaired)
		case r.Repaired > 0:
			ui.Success("%s: %d blocks repaired", r.Path, r.Repaired)
		}
		total += r.Repaired
	}
	if total == 0 {
		ui.Info("%s", ui.Muted("Nothing to repair"))
	}
	return nil
}
