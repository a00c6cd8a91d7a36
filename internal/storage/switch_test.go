package storage

import (
	"path/filepath"
	"testing"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.Context(), filepath.Join(t.TempDir(), DatabaseFile))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCommitSwitchStoresRecordAndActiveTask(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()
	a, _ := store.CreateTask(ctx, "A")
	b, _ := store.CreateTask(ctx, "B")

	rec, err := store.CommitSwitch(ctx, &model.TimeRecord{Task: a, StartTime: 1000, EndTime: 5000}, &model.ActiveTask{Task: b, StartTime: 5000})
	if err != nil {
		t.Fatalf("CommitSwitch: %v", err)
	}
	if rec == nil || rec.ID == "" {
		t.Fatalf("CommitSwitch returned %+v, want a stored record", rec)
	}
	at, err := store.GetActiveTask(ctx)
	if err != nil || at == nil || at.Task != b || at.StartTime != 5000 {
		t.Fatalf("GetActiveTask = %+v, %v; want B since 5000", at, err)
	}

	rec, err = store.CommitSwitch(ctx, nil, nil)
	if err != nil || rec != nil {
		t.Fatalf("CommitSwitch(nil, nil) = %+v, %v", rec, err)
	}
	if at, _ := store.GetActiveTask(ctx); at != nil {
		t.Errorf("active task = %+v, want none", at)
	}
	if all, _ := store.SelectAll(ctx); len(all) != 1 {
		t.Errorf("SelectAll returned %d records, want 1", len(all))
	}
}

func TestCommitSwitchRollsBackRecordWhenActiveWriteFails(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()
	a, _ := store.CreateTask(ctx, "A")
	b, _ := store.CreateTask(ctx, "B")

	if _, err := store.db.ExecContext(ctx, `DROP TABLE active_task`); err != nil {
		t.Fatalf("drop active_task: %v", err)
	}
	_, err := store.CommitSwitch(ctx, &model.TimeRecord{Task: a, StartTime: 1000, EndTime: 5000}, &model.ActiveTask{Task: b, StartTime: 5000})
	if err == nil {
		t.Fatal("CommitSwitch succeeded without an active_task table")
	}
	all, err := store.SelectAll(ctx)
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("SelectAll returned %d records, want 0 after rollback", len(all))
	}
}

func TestCommitSwitchValidatesRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()
	a, _ := store.CreateTask(ctx, "A")

	_, err := store.CommitSwitch(ctx, &model.TimeRecord{Task: a, StartTime: 5000, EndTime: 5000}, nil)
	if err == nil {
		t.Fatal("CommitSwitch accepted an empty span")
	}
}
