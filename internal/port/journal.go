package port

import "docgen/internal/domain"

// Journal keeps pre-run file snapshots for undo.
type Journal interface {
	RecordJournal(path, before, after string) (string, error)

	LatestJournal(path string) (domain.JournalEntry, error)

	DeleteJournal(id string) error
}
