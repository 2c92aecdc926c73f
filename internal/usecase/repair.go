package usecase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docgen/internal/adapter/doccomment"
	"docgen/internal/adapter/methods"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// RepairResult contains the results of repairing one file.
type RepairResult struct {
	Path      string
	Repaired  int
	Changed   bool
	JournalID string
	Err       error
}

// RepairUseCase fixes doc comments that swallowed an earlier unterminated
// start marker.
type RepairUseCase struct {
	files      port.FileStore
	journal    port.Journal
	delimiters domain.Delimiters
	dryRun     bool
	logger     *zap.Logger
}

// NewRepairUseCase creates a new repair use case. Empty delimiters select the
// language default per file.
func NewRepairUseCase(files port.FileStore, journal port.Journal, delimiters domain.Delimiters, dryRun bool, logger *zap.Logger) *RepairUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairUseCase{
		files:      files,
		journal:    journal,
		delimiters: delimiters,
		dryRun:     dryRun,
		logger:     logger,
	}
}

// Repair rewrites path when at least one block needed fixing.
func (u *RepairUseCase) Repair(path string) (*RepairResult, error) {
	result := &RepairResult{Path: path}

	delims := u.delimiters
	if delims.Start == "" || delims.End == "" {
		lang, err := methods.DetectLanguage(path)
		if err != nil {
			return result, err
		}
		delims = lang.Delimiters
	}

	content, err := u.files.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	repaired, n := doccomment.NewExtractor(delims).Repair(content)
	result.Repaired = n
	if n == 0 || u.dryRun {
		return result, nil
	}

	if u.journal != nil {
		id, err := u.journal.RecordJournal(path, content, repaired)
		if err != nil {
			u.logger.Warn("failed to record undo journal", zap.String("path", path), zap.Error(err))
		} else {
			result.JournalID = id
		}
	}

	if err := u.files.WriteFile(path, repaired); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Changed = true
	u.logger.Info("repaired doc comments", zap.String("path", path), zap.Int("blocks", n))
	return result, nil
}

// RepairDir repairs every file walker finds under root. Files in unsupported
// languages are skipped.
func (u *RepairUseCase) RepairDir(root string, walker port.FileWalker) ([]*RepairResult, error) {
	files, err := walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	var results []*RepairResult
	for _, file := range files {
		result, err := u.Repair(file.Path)
		if errors.Is(err, domain.ErrUnsupportedLanguage) {
			continue
		}
		result.Err = err
		results = append(results, result)
	}
	return results, nil
}
