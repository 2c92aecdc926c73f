package domain

import "errors"

var (
	// ErrUnsupportedLanguage is returned for files no parser handles.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrNoJournalEntry is returned when a file has nothing to undo.
	ErrNoJournalEntry = errors.New("no journal entry")
	// ErrDirtyWorkingTree is returned for files with uncommitted changes.
	ErrDirtyWorkingTree = errors.New("file has unstaged changes")
	// ErrFileChanged is returned by undo when the file was edited after the run.
	ErrFileChanged = errors.New("file changed since the run")
)
