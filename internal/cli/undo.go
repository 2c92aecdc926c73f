package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docgen/internal/adapter/fs"
	"docgen/internal/domain"
	"docgen/internal/ui"
	"docgen/internal/usecase"
)

var undoForce bool

var undoCmd = &cobra.Command{
	Use:   "undo <file>...",
	Short: "Restore files to their content before the last generate or repair",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
	undoCmd.Flags().BoolVar(&undoForce, "force", false, "restore even if the file was edited since")
}

func runUndo(cmd *cobra.Command, args []string) error {
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewUndoUseCase(fs.NewFiles(), st)

	failed := 0
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		result, err := uc.Undo(path, undoForce)
		switch {
		case errors.Is(err, domain.ErrNoJournalEntry):
			ui.Warning("%s: nothing to undo", arg)
		case errors.Is(err, domain.ErrFileChanged):
			failed++
			ui.Error("%s: edited since the last run, use --force to restore anyway", arg)
		case err != nil:
			failed++
			ui.Error("%s: %v", arg, err)
		default:
			ui.Success("%s restored to its state before %s", arg, result.RunAt.Local().Format("2006-01-02 15:04:05"))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d files could not be restored", failed)
	}
	return nil
}
