package cli

import (
	"fmt"

	"go.uber.org/zap"

	"docgen/config"
	"docgen/internal/adapter/store"
)

// openState opens the response cache and undo journal of the project and
// brings its schema up to date.
func openState() (*store.BoltStore, error) {
	dir := GetRootDir()
	if err := config.EnsureStateDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .docgen directory: %w", err)
	}

	st, err := store.NewBoltStore(config.StateDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	result, err := st.Migrate()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	if result.ClearedCached {
		GetLogger().Info("response cache cleared", zap.String("reason", result.Reason))
	}
	return st, nil
}
