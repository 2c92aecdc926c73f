package store

import (
	"errors"
	"path/filepath"
	"testing"

	"docgen/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResponseRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, found, err := s.GetResponse("missing"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	want := domain.CachedResponse{
		Form:      domain.FormStreamed,
		Fragments: []string{"data: /**", "data:  */"},
		Model:     "stream:m",
	}
	if err := s.PutResponse("k", want); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.GetResponse("k")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if got.Form != domain.FormStreamed || len(got.Fragments) != 2 || got.Model != "stream:m" {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestJournalLatestPerPath(t *testing.T) {
	s := newTestStore(t)

	first, err := s.RecordJournal("A.java", "v0", "v1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.RecordJournal("A.java", "v1", "v2")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("journal ids must be unique")
	}

	entry, err := s.LatestJournal("A.java")
	if err != nil {
		t.Fatal(err)
	}
	if entry.ID != second || entry.Before != "v1" || entry.After != "v2" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	if err := s.DeleteJournal(entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LatestJournal("A.java"); !errors.Is(err, domain.ErrNoJournalEntry) {
		t.Errorf("expected ErrNoJournalEntry, got %v", err)
	}
}

func TestJournalMissingPath(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LatestJournal("nope.java"); !errors.Is(err, domain.ErrNoJournalEntry) {
		t.Errorf("expected ErrNoJournalEntry, got %v", err)
	}
	if err := s.DeleteJournal("unknown"); err != nil {
		t.Errorf("deleting an unknown id should be a no-op, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	s := newTestStore(t)

	result, err := s.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.OldVersion != 0 || result.ClearedCached {
		t.Errorf("fresh database should only be stamped: %+v", result)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("expected version %d, got %d", CurrentSchemaVersion, version)
	}

	if err := s.PutResponse("k", domain.CachedResponse{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordJournal("A.java", "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.setSchemaVersion(CurrentSchemaVersion + 1); err != nil {
		t.Fatal(err)
	}

	result, err = s.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if !result.ClearedCached {
		t.Error("version change should clear cached responses")
	}
	if n, _ := s.ResponseCount(); n != 0 {
		t.Errorf("expected no responses, got %d", n)
	}
	if _, err := s.LatestJournal("A.java"); err != nil {
		t.Errorf("journal should survive migration: %v", err)
	}
}

func TestForEachResponse(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"b", "a", "c"} {
		if err := s.PutResponse(k, domain.CachedResponse{Text: k}); err != nil {
			t.Fatal(err)
		}
	}

	var keys []string
	err := s.ForEachResponse(func(key string, resp domain.CachedResponse) error {
		if resp.Text != key {
			t.Errorf("key %s holds %q", key, resp.Text)
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("unexpected order %v", keys)
	}

	stop := errors.New("stop")
	n := 0
	err = s.ForEachResponse(func(string, domain.CachedResponse) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("expected early stop, got n=%d err=%v", n, err)
	}
}
