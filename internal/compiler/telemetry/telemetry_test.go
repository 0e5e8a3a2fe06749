package telemetry

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenMigratesSessionSchema(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Recent(10); err != nil {
		t.Errorf("expected Recent to succeed against a freshly migrated schema, got %v", err)
	}
}

func TestRecordAndRecentRoundTrip(t *testing.T) {
	store := openTestStore(t)
	sess := &Session{
		SourceFile: "main.ruchy",
		SourceHash: "deadbeef",
		Stage:      "evaluate",
		DurationMS: 42,
		StartedAt:  time.Now(),
	}
	if err := store.Record(sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessions, err := store.Recent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session recorded, got %d", len(sessions))
	}
	if sessions[0].SourceFile != "main.ruchy" {
		t.Errorf("expected SourceFile %q, got %q", "main.ruchy", sessions[0].SourceFile)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	first := &Session{SourceFile: "a.ruchy", Stage: "parse", StartedAt: time.Now()}
	if err := store.Record(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &Session{SourceFile: "b.ruchy", Stage: "parse", StartedAt: time.Now()}
	if err := store.Record(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessions, err := store.Recent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SourceFile != "b.ruchy" {
		t.Errorf("expected the most recently created session first, got %q", sessions[0].SourceFile)
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		if err := store.Record(&Session{SourceFile: "x.ruchy", Stage: "parse", StartedAt: time.Now()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	sessions, err := store.Recent(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected Recent(2) to return 2 rows, got %d", len(sessions))
	}
}

func TestFailureRateWithNoSessions(t *testing.T) {
	store := openTestStore(t)
	rate, err := store.FailureRate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Errorf("expected a 0 failure rate with no sessions recorded, got %v", rate)
	}
}

func TestFailureRateComputesFractionWithErrors(t *testing.T) {
	store := openTestStore(t)
	sessions := []*Session{
		{SourceFile: "ok1.ruchy", Stage: "evaluate", ErrorCnt: 0, StartedAt: time.Now()},
		{SourceFile: "ok2.ruchy", Stage: "evaluate", ErrorCnt: 0, StartedAt: time.Now()},
		{SourceFile: "bad.ruchy", Stage: "infer", ErrorCnt: 3, StartedAt: time.Now()},
		{SourceFile: "worse.ruchy", Stage: "parse", ErrorCnt: 1, StartedAt: time.Now()},
	}
	for _, s := range sessions {
		if err := store.Record(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	rate, err := store.FailureRate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.5 {
		t.Errorf("expected failure rate 0.5, got %v", rate)
	}
}
