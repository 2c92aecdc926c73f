package usecase

import (
	"fmt"
	"time"

	"docgen/internal/domain"
	"docgen/internal/port"
)

// UndoResult describes a restored file.
type UndoResult struct {
	Path      string
	JournalID string
	RunAt     time.Time
}

// UndoUseCase restores files from the journal.
type UndoUseCase struct {
	files   port.FileStore
	journal port.Journal
}

func NewUndoUseCase(files port.FileStore, journal port.Journal) *UndoUseCase {
	return &UndoUseCase{files: files, journal: journal}
}

// Undo puts back the content path had before its last run. Unless force is
// set it refuses when the file was edited after that run.
func (u *UndoUseCase) Undo(path string, force bool) (*UndoResult, error) {
	entry, err := u.journal.LatestJournal(path)
	if err != nil {
		return nil, err
	}

	current, err := u.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if current != entry.After && !force {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrFileChanged)
	}

	if err := u.files.WriteFile(path, entry.Before); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := u.journal.DeleteJournal(entry.ID); err != nil {
		return nil, fmt.Errorf("failed to delete journal entry: %w", err)
	}

	return &UndoResult{Path: path, JournalID: entry.ID, RunAt: entry.CreatedAt}, nil
}
